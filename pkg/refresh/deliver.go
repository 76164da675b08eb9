package refresh

import "ticker-frame/pkg/content"

// Poster runs a function on the presentation thread
type Poster interface {
	Post(fn func())
}

// Presenter is the part of the scheduler a refresh feeds
type Presenter interface {
	Start()
	SupplyQueue(q content.Queue)
}

// Deliver returns an OnQueue hook that hands each queue to p on the
// presentation thread. The first queue also starts p; later ones only
// replace its queue.
func Deliver(poster Poster, p Presenter) func(content.Queue) {
	started := false
	return func(q content.Queue) {
		poster.Post(func() {
			p.SupplyQueue(q)
			if !started {
				started = true
				p.Start()
			}
		})
	}
}
