package display

import (
	"fmt"
	"io"

	"github.com/backmassage/mediaconv/internal/term"
)

// PrintBanner prints the ASCII art banner and version; uses Magenta if
// colors are enabled.
func PrintBanner(w io.Writer, version string) {
	if term.Enabled() {
		fmt.Fprint(w, term.Magenta)
	}
	fmt.Fprint(w, `                     _ _
 _ __ ___   ___  __| (_) __ _  ___ ___  _ ____   __
| '_ `+"`"+` _ \ / _ \/ _`+"`"+` | |/ _`+"`"+` |/ __/ _ \| '_ \ \ / /
| | | | | |  __/ (_| | | (_| | (_| (_) | | | \ V /
|_| |_| |_|\___|\__,_|_|\__,_|\___\___/|_| |_|\_/
`)
	if term.Enabled() {
		fmt.Fprint(w, term.NC)
	}
	fmt.Fprintf(w, "  v%s\n\n", version)
}
