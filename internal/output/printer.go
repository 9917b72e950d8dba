// Package output formats CLI messages and table previews.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes status messages. Messages go to out, warnings and errors
// to errOut.
type Printer struct {
	out       io.Writer
	errOut    io.Writer
	useColors bool
}

// NewPrinter returns a printer on the given writers. Colors are disabled
// when NO_COLOR is set or the terminal is dumb.
func NewPrinter(out, errOut io.Writer, useColors bool) *Printer {
	if _, ok := os.LookupEnv("NO_COLOR"); ok || os.Getenv("TERM") == "dumb" {
		useColors = false
	}
	return &Printer{out: out, errOut: errOut, useColors: useColors}
}

// Out returns the data writer.
func (p *Printer) Out() io.Writer {
	return p.out
}

// Header prints a section header.
func (p *Printer) Header(format string, args ...interface{}) {
	if p.useColors {
		color.New(color.Bold, color.Underline).Fprintf(p.out, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, "== "+format+" ==\n", args...)
}

func (p *Printer) Info(format string, args ...interface{}) {
	if p.useColors {
		color.New(color.FgCyan).Fprintf(p.out, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Success(format string, args ...interface{}) {
	if p.useColors {
		color.New(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
}

func (p *Printer) Warning(format string, args ...interface{}) {
	if p.useColors {
		color.New(color.FgYellow).Fprintf(p.errOut, "⚠ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.errOut, "[WARN] "+format+"\n", args...)
}

func (p *Printer) Error(format string, args ...interface{}) {
	if p.useColors {
		color.New(color.FgRed).Fprintf(p.errOut, "✗ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.errOut, "[ERROR] "+format+"\n", args...)
}
