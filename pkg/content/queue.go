package content

import "strings"

// WeatherSeparator joins the per-point weather markups into one item
const WeatherSeparator = "　"

// Build merges the latest fetch results into a queue. Earthquake items come
// first when present, then the combined weather item, then a title and a
// body for each news entry in fetch order.
func Build(s Snapshot) Queue {
	q := make(Queue, 0, len(s.Quake)+1+2*len(s.News))

	q = append(q, s.Quake...)

	q = append(q, Item{Kind: Weather, Payload: strings.Join(s.Weather, WeatherSeparator)})

	for _, n := range s.News {
		q = append(q,
			Item{Kind: NewsTitle, Payload: n.Title, Link: n.Link},
			Item{Kind: NewsBody, Payload: n.Description, Link: n.Link},
		)
	}

	return q
}
