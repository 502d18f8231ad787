package operator

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes operator-facing messages, colored when enabled.
type Printer struct {
	out       io.Writer
	useColors bool
}

// NewPrinter returns a Printer on out. Colors are disabled when NO_COLOR is
// set or TERM is dumb.
func NewPrinter(out io.Writer, useColors bool) *Printer {
	if _, ok := os.LookupEnv("NO_COLOR"); ok || os.Getenv("TERM") == "dumb" {
		useColors = false
	}
	return &Printer{out: out, useColors: useColors}
}

// Info prints an informational message.
func (p *Printer) Info(format string, args ...any) {
	p.print(color.FgCyan, "", format, args...)
}

// Warning prints a warning.
func (p *Printer) Warning(format string, args ...any) {
	p.print(color.FgYellow, "[WARN] ", format, args...)
}

// Error prints an error.
func (p *Printer) Error(format string, args ...any) {
	p.print(color.FgRed, "[ERROR] ", format, args...)
}

// Action prints an instruction the operator must follow.
func (p *Printer) Action(format string, args ...any) {
	p.print(color.FgMagenta, ">> ", format, args...)
}

func (p *Printer) print(attr color.Attribute, prefix, format string, args ...any) {
	if p.useColors {
		color.New(attr).Fprintf(p.out, prefix+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, prefix+format+"\n", args...)
}
