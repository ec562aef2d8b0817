package chatloop

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

type statusFormatter struct {
	now func() time.Time
}

func newStatusFormatter(now func() time.Time) *statusFormatter {
	if now == nil {
		now = time.Now
	}
	return &statusFormatter{now: now}
}

// interval renders a slider value such as 3600 as "1h".
func (f *statusFormatter) interval(seconds int) string {
	return formatDuration(time.Duration(seconds) * time.Second)
}

// line summarises the dispatcher: countdown and last send.
func (f *statusFormatter) line(d *Dispatcher) string {
	next := "Idle"
	if d.Active() {
		next = "Next message in " + formatDuration(d.Remaining().Round(time.Second))
	}
	last := d.LastSent()
	if last.IsZero() {
		return next + " · nothing sent yet"
	}
	return next + " · last sent " + humanize.RelTime(last, f.now(), "ago", "from now") +
		" (" + humanize.Comma(int64(d.SentCount())) + " total)"
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}
