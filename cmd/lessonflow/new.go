package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/lessonflow"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new <file>",
	Short: "Create a new flow file",
	Long:  `Writes a Start/End flow, optionally with a Setup and a Lecture node, to a file ("-" for stdout).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		scaffold, _ := cmd.Flags().GetBool("scaffold")
		force, _ := cmd.Flags().GetBool("force")

		if args[0] == "-" {
			return runNew(cmd.OutOrStdout(), name, scaffold)
		}
		flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
		if force {
			flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		}
		f, err := os.OpenFile(args[0], flags, 0644)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", args[0], err)
		}
		defer f.Close()
		return runNew(f, name, scaffold)
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().String("name", "Untitled flow", "Flow name")
	newCmd.Flags().Bool("scaffold", false, "Add a Setup and a Lecture node wired between Start and End")
	newCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runNew(w io.Writer, name string, scaffold bool) error {
	ed := lessonflow.New(lessonflow.WithLogger(logger), lessonflow.WithFlowInfo(domain.FlowInfo{Name: name}))
	defer ed.Close()

	if scaffold {
		if _, err := ed.CreateNode(domain.NodeTypeSetup, domain.Position{X: 500, Y: 50}, nil); err != nil {
			return err
		}
		lecture, err := ed.CreateNode(domain.NodeTypeLecture, domain.Position{X: 250, Y: 225}, nil)
		if err != nil {
			return err
		}
		if _, err := ed.Connect(domain.DefaultStartNodeID, lecture.ID, ""); err != nil {
			return err
		}
		if _, err := ed.Connect(lecture.ID, domain.DefaultEndNodeID, ""); err != nil {
			return err
		}
	}

	flow, err := ed.Export()
	if err != nil {
		return err
	}
	return writeFlow(w, flow)
}
