package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/pdiddy/batchconv/internal/engine"
	"github.com/pdiddy/batchconv/pkg/types"
)

// newProgress returns a progress bar on term when it is a terminal and
// bar is true, and a per-file line printer on out otherwise.
func newProgress(out io.Writer, term *os.File, bar bool) engine.Observer {
	if bar && isTerminal(term) {
		return &barProgress{w: term}
	}
	return &lineProgress{w: out}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// barProgress grows the bar by each wave's size, so files added during a
// run extend the bar rather than restart it.
type barProgress struct {
	engine.NopObserver
	w     io.Writer
	bar   *progressbar.ProgressBar
	total int
}

func (p *barProgress) OnRunStart(types.RunResult) {
	p.total = 0
	p.bar = progressbar.NewOptions(0,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *barProgress) OnWaveStart(_, size int) {
	p.total += size
	p.bar.ChangeMax(p.total)
}

func (p *barProgress) OnOutcome(types.Outcome) {
	p.bar.Add(1)
}

func (p *barProgress) OnRunDone(types.RunResult) {
	p.bar.Finish()
}

// lineProgress prints one line per outcome.
type lineProgress struct {
	engine.NopObserver
	w io.Writer
}

func (p *lineProgress) OnOutcome(o types.Outcome) {
	if o.Success {
		fmt.Fprintf(p.w, "  converted: %s -> %s (%s)\n", o.Item.Path, o.OutputPath, o.Charset)
		return
	}
	fmt.Fprintf(p.w, "  failed:    %s (%s)\n", o.Item.Path, o.Message)
}
