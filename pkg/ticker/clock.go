package ticker

import (
	"fmt"
	"time"
)

// ClockSink receives the formatted clock text
type ClockSink interface {
	SetClock(text string)
}

// FormatClock renders t as │HH:MM:SS│
func FormatClock(t time.Time) string {
	return fmt.Sprintf("│%02d:%02d:%02d│", t.Hour(), t.Minute(), t.Second())
}

// StartClock writes the time to sink immediately and then every second
func StartClock(loop *Loop, sink ClockSink, now func() time.Time) TimerID {
	update := func() {
		sink.SetClock(FormatClock(now()))
	}
	update()
	return loop.Every(time.Second, update)
}
