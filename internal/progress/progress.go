package progress

import (
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Reporter is a shared multi-bar display. Workers downloading in parallel each
// add their own bar; the display takes care of rendering them without
// interleaving. Purely observability, it never influences control flow.
type Reporter struct {
	p *mpb.Progress
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{
		p: mpb.New(mpb.WithOutput(out), mpb.WithWidth(48)),
	}
}

// Track adds a bar for one file. A zero total renders as an indeterminate
// bar until Done is called.
func (r *Reporter) Track(label string, total int64) *Tracker {
	bar := r.p.New(total,
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding("-").Rbound("]"),
		mpb.PrependDecorators(
			decor.CountersKibiByte("% .1f / % .1f"),
		),
		mpb.AppendDecorators(
			decor.Name(" - "+label),
		),
	)

	return &Tracker{bar: bar}
}

// Wait blocks until every bar has completed and flushes the display.
func (r *Reporter) Wait() {
	r.p.Wait()
}

// Tracker is the per-download handle.
type Tracker struct {
	bar *mpb.Bar
}

// Add records n more bytes written.
func (t *Tracker) Add(n int) {
	t.bar.IncrBy(n)
}

// Done marks the bar complete. For bars with an unknown total the current
// count becomes the total.
func (t *Tracker) Done() {
	t.bar.SetTotal(-1, true)
}

// Abort removes the bar, for downloads that failed before completing.
func (t *Tracker) Abort() {
	t.bar.Abort(true)
}
