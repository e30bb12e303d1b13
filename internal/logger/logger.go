package logger

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Init initializes the default logger for the CLI. Color is enabled only on
// interactive terminals, unless disabled explicitly.
func Init(verbose, noColor bool) {
	log.SetDefault(log.NewWithOptions(os.Stderr,
		log.Options{
			ReportTimestamp: false,
			Prefix:          "irfold",
		}))

	if !verbose {
		log.SetLevel(log.WarnLevel)
	}

	if noColor || !isatty.IsTerminal(os.Stderr.Fd()) {
		log.SetColorProfile(termenv.Ascii)
		return
	}
	log.SetColorProfile(termenv.ANSI256)
}
