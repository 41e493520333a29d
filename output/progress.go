package output

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"netsweep/pool"
)

// Progress returns a pool.ProgressFunc that reports "label done/total".
// On a terminal the line is redrawn in place; otherwise a line is written
// every 10% and at completion.
func Progress(w io.Writer, label string) pool.ProgressFunc {
	live := isTerminal(w)
	lastStep := -1
	return func(done, total int) {
		if total <= 0 {
			return
		}
		pct := done * 100 / total
		if live {
			fmt.Fprintf(w, "\r%s %d/%d (%d%%)", label, done, total, pct)
			if done == total {
				fmt.Fprintln(w)
			}
			return
		}
		if step := pct / 10; step != lastStep || done == total {
			lastStep = step
			fmt.Fprintf(w, "%s %d/%d (%d%%)\n", label, done, total, pct)
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
