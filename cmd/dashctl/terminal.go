package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/gosuri/uiprogress"
	"github.com/gosuri/uiprogress/util/strutil"
	"github.com/reportdash/backend/internal/client"
)

const barLabelWidth = 35

// terminal renders dashboard effects on a text console.
type terminal struct {
	out    io.Writer
	errOut io.Writer
	asJSON bool

	// onReload re-fetches what the page would show after a reload.
	onReload func()

	mu       sync.Mutex
	progress *uiprogress.Progress
	bar      *uiprogress.Bar
	label    string
	rows     []client.Statistic
}

func newTerminal(out, errOut io.Writer, asJSON bool) *terminal {
	return &terminal{out: out, errOut: errOut, asJSON: asJSON}
}

func (t *terminal) ShowLoading() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.progress != nil {
		return
	}

	t.label = "starting"

	p := uiprogress.New()
	p.SetOut(t.out)

	bar := p.AddBar(100).AppendCompleted()
	bar.Width = 50
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		t.mu.Lock()
		defer t.mu.Unlock()
		return strutil.Resize(fmt.Sprintf("task: %s", t.label), barLabelWidth)
	})

	p.Start()

	t.progress = p
	t.bar = bar
}

func (t *terminal) ReportProgress(status client.TaskStatus) {
	t.mu.Lock()
	bar := t.bar
	switch {
	case status.Message != "":
		t.label = status.Message
	case status.Status != "":
		t.label = status.Status
	}
	t.mu.Unlock()

	if bar == nil {
		return
	}

	progress := status.Progress
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	_ = bar.Set(progress)
}

func (t *terminal) HideLoading() {
	t.mu.Lock()
	p := t.progress
	t.progress = nil
	t.bar = nil
	t.mu.Unlock()

	if p != nil {
		p.Stop()
	}
}

func (t *terminal) Reload() {
	t.HideLoading()
	fmt.Fprintln(t.out, "Done.")
	if t.onReload != nil {
		t.onReload()
	}
}

func (t *terminal) Notify(message string) {
	fmt.Fprintln(t.errOut, message)
}

func (t *terminal) RenderStatistics(rows []client.Statistic) {
	t.mu.Lock()
	t.rows = rows
	t.mu.Unlock()
}

func (t *terminal) ShowStatisticsPopup() {
	t.mu.Lock()
	rows := t.rows
	t.mu.Unlock()

	if t.asJSON {
		enc := json.NewEncoder(t.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			fmt.Fprintln(t.errOut, err)
		}
		return
	}

	if len(rows) == 0 {
		fmt.Fprintln(t.out, "No statistics available.")
		return
	}

	tw := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CUSTOMER\tLOCATION\tDATE\tCRITICAL\tIMMEDIATE\tWARNING\tTOTAL\tCOLOR")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.Customer, r.Location, r.Date, r.Critical, r.Immediate, r.Warning, r.Total, r.Color)
	}
	tw.Flush()
}
