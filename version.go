package lessonflow

import _ "embed"

// Version is the release of the library and CLI.
//
//go:embed VERSION
var Version string
