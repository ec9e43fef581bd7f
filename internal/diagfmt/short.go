package diagfmt

import (
	"fmt"
	"io"

	"github.com/FuelLabs/sway-sub019/internal/diag"
	"github.com/FuelLabs/sway-sub019/internal/source"
)

// Short renders one line per diagnostic, grep-friendly:
// <path>:<line>:<col>: <sev> <CODE>: <message>
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) {
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			location(fs, d.Primary, mode),
			d.Severity.String(),
			d.Code.String(),
			d.Message)
	}
}
