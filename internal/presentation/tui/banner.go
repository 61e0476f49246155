package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the lessonflow banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _                              __ _               ", "#34d399"},
		{"| | ___  ___ ___  ___  _ __    / _| | _____      __", "#2dd4bf"},
		{"| |/ _ \\/ __/ __|/ _ \\| '_ \\  | |_| |/ _ \\ \\ /\\ / /", "#22d3ee"},
		{"| |  __/\\__ \\__ \\ (_) | | | | |  _| | (_) \\ V  V / ", "#38bdf8"},
		{"|_|\\___||___/___/\\___/|_| |_| |_| |_|\\___/ \\_/\\_/  ", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status colors a short status word: green when ok, red otherwise.
func Status(text string, ok bool) string {
	p := termenv.ColorProfile()
	color := "#ef4444"
	if ok {
		color = "#22c55e"
	}
	return termenv.String(text).Foreground(p.Color(color)).Bold().String()
}
