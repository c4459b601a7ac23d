package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-viewer/rpc"
	"github.com/muesli/termenv"
)

// printer writes ctl results, coloured when the writer is a terminal and plain otherwise.
type printer struct {
	w   io.Writer
	out *termenv.Output
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, out: termenv.NewOutput(w)}
}

func (p *printer) success(format string, args ...any) {
	p.line("ok", "2", format, args...)
}

func (p *printer) warn(format string, args ...any) {
	p.line("!!", "3", format, args...)
}

// failure prints err, followed by the code and field of a remote error.
func (p *printer) failure(err error) {
	p.line("error", "1", "%v", err)
	var re *rpc.RemoteError
	if errors.As(err, &re) {
		p.detail("code", string(re.Code))
		if re.Field != "" {
			p.detail("field", re.Field)
		}
	}
}

func (p *printer) detail(key, value string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.out.String(key+":").Faint().String(), value)
}

func (p *printer) line(mark, color, format string, args ...any) {
	styled := p.out.String(mark).Foreground(p.out.Color(color)).Bold().String()
	fmt.Fprintf(p.w, "%s %s\n", styled, fmt.Sprintf(format, args...))
}
