package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/lessonflow/internal/presentation/tui"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/aretw0/lessonflow/pkg/schema"
	"golang.org/x/term"
)

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// readFlow loads and validates a persisted flow file.
func readFlow(path string) (domain.FlowFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.FlowFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return schema.ParseFlow(data)
}

// writeFlow writes a flow as indented JSON.
func writeFlow(w io.Writer, flow domain.FlowFile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(flow)
}

// printMarkdown renders markdown with glamour on a terminal and writes it raw
// otherwise.
func printMarkdown(w io.Writer, markdown string, rich bool) error {
	if rich {
		out, err := tui.NewRenderer()(markdown)
		if err == nil {
			markdown = out
		}
	}
	_, err := io.WriteString(w, markdown)
	return err
}

// richOutput reports whether stdout should get terminal styling.
func richOutput(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
