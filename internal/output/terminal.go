package output

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ColorEnabled reports whether colored output should be written to w. Color
// is off when requested, when NO_COLOR is set, or when w is not a terminal.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
