package output

import (
	"io"
	"strings"

	"github.com/pranshuparmar/wholocked/pkg/model"
)

// PrintTree prints the ancestry of a lock holder, root first, ending with
// the locked path. An empty chain prints the holder alone.
func PrintTree(w io.Writer, lock model.Lock, chain []model.ProcessSummary, colorEnabled bool) {
	p := NewPrinter(w, colorEnabled)

	if len(chain) == 0 {
		chain = []model.ProcessSummary{{PID: lock.Holder.PID, Command: lock.Holder.Name}}
	}

	for i, proc := range chain {
		indent := strings.Repeat("  ", i)
		if i > 0 {
			p.Printf("%s%s└─ %s", indent, p.c(colorMagenta), p.c(colorReset))
		}
		cmdColor := ansiString("")
		if i == len(chain)-1 {
			cmdColor = p.c(colorGreen)
		}
		p.Printf("%s%s%s (%spid %d%s)\n", cmdColor, proc.Command, p.c(colorReset), p.c(colorDim), proc.PID, p.c(colorReset))
	}

	indent := strings.Repeat("  ", len(chain))
	p.Printf("%s%s└─ %slocks %s\n", indent, p.c(colorMagenta), p.c(colorReset), lock.Path)
}
