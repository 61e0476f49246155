package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/lessonflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of lessonflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lessonflow version %s\n", strings.TrimSpace(lessonflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
