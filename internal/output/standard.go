package output

import (
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pranshuparmar/wholocked/pkg/model"
)

// RenderStandard prints the count of locks on a target followed by the
// details of every holder
func RenderStandard(w io.Writer, r model.Report, colorEnabled bool) {
	p := NewPrinter(w, colorEnabled)

	p.Printf("%s%d%s process(es) locking \"%s\"\n", p.c(colorGreen), len(r.Locks), p.c(colorReset), r.Target)
	p.Println("------")
	for _, lock := range r.Locks {
		renderHolder(p, r, lock)
	}
	if r.RebootReasons != model.RebootNone {
		p.Printf("%sreboot required:%s %s\n", p.c(colorYellow), p.c(colorReset), strings.Join(r.RebootReasons.Names(), ", "))
	}
	renderWarnings(p, r.Warnings)
}

func renderHolder(p Printer, r model.Report, lock model.Lock) {
	h := lock.Holder
	p.Printf("%s0x%08X%s %s\n", p.c(colorMagenta), h.PID, p.c(colorReset), h.Name)
	p.Printf("   %s\n", h.FullName())
	if h.AppType != model.AppUnknown {
		p.Printf("   %s\n", h.AppType)
	}
	if h.ServiceName != "" {
		p.Printf("   %sservice:%s %s\n", p.c(colorDim), p.c(colorReset), h.ServiceName)
	}
	if lock.Path != r.Resolved {
		p.Printf("   %spath:%s %s\n", p.c(colorDim), p.c(colorReset), lock.Path)
	}
	if h.StartTime != 0 {
		started := h.StartTime.Time()
		p.Printf("   %sstart:%s %s (%s)\n", p.c(colorDim), p.c(colorReset), started.Local().Format(time.DateTime), humanize.Time(started))
	}
	if h.Times == nil {
		return
	}
	if !h.Times.Exit.IsZero() {
		p.Printf("   %sexit:%s %s\n", p.c(colorDim), p.c(colorReset), h.Times.Exit.Local().Format(time.DateTime))
	}
	if h.Times.Kernel != 0 {
		p.Printf("   %skernel:%s %s\n", p.c(colorDim), p.c(colorReset), h.Times.Kernel)
	}
	if h.Times.User != 0 {
		p.Printf("   %suser:%s %s\n", p.c(colorDim), p.c(colorReset), h.Times.User)
	}
}

// RenderWarnings prints only the warnings of a report
func RenderWarnings(w io.Writer, warnings []string, colorEnabled bool) {
	renderWarnings(NewPrinter(w, colorEnabled), warnings)
}

func renderWarnings(p Printer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	p.Printf("%sWarnings%s:\n", p.c(colorYellow), p.c(colorReset))
	for _, warn := range warnings {
		p.Printf("  • %s\n", warn)
	}
}

// RenderError prints a failed target the way the other renderers print a
// successful one
func RenderError(w io.Writer, target string, err error, colorEnabled bool) {
	p := NewPrinter(w, colorEnabled)
	p.Println()
	p.Printf("%sError:%s\n", p.c(colorRed), p.c(colorReset))
	p.Printf("  %s: %s\n", target, err)
}
