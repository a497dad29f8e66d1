package output

import (
	"io"

	"github.com/pranshuparmar/wholocked/pkg/model"
)

// RenderShort prints one line per lock
func RenderShort(w io.Writer, r model.Report, colorEnabled bool) {
	p := NewPrinter(w, colorEnabled)

	if len(r.Locks) == 0 {
		p.Printf("%s%s%s: not locked\n", p.c(colorGreen), r.Target, p.c(colorReset))
		return
	}
	for _, lock := range r.Locks {
		p.Printf("%s%s%s (%spid %d%s) %s→%s %s\n",
			p.c(colorGreen), lock.Holder.Name, p.c(colorReset),
			p.c(colorDim), lock.Holder.PID, p.c(colorReset),
			p.c(colorMagenta), p.c(colorReset),
			lock.Path)
	}
}
