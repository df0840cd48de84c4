// Command htmlfn renders, serves and publishes HTML template documents.
package main

import (
	"fmt"
	"io"
	"os"

	herrors "github.com/vango-dev/htmlfn/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬ ┬┌┬┐┌┬┐┬  ┌─┐┌┐┌
  ├─┤ │ │││├  ├┤ │││
  ┴ ┴ ┴ ┴ ┴┴─┘└  ┘└┘
`

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		if format, _ := cmd.PersistentFlags().GetString("log-format"); format == "json" {
			herrors.FprintJSON(os.Stderr, err)
		} else {
			herrors.Fprint(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
