package content

// Kind tags a content item with what it shows and, through the mode table,
// how it is presented
type Kind int

const (
	Weather Kind = iota
	NewsTitle
	NewsBody
	QuakeTitle
	QuakeBody
)

var kindNames = map[Kind]string{
	Weather:    "weather",
	NewsTitle:  "news-title",
	NewsBody:   "news-desc",
	QuakeTitle: "earthquake-title",
	QuakeBody:  "earthquake-desc",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Mode is the presentation mode of an item
type Mode int

const (
	// Scroll crawls the item leftwards across the viewport
	Scroll Mode = iota
	// Fade shows the item at a fixed offset, then fades it out
	Fade
)

func (m Mode) String() string {
	if m == Fade {
		return "fade"
	}
	return "scroll"
}

var modeByKind = map[Kind]Mode{
	Weather:    Scroll,
	NewsTitle:  Fade,
	NewsBody:   Scroll,
	QuakeTitle: Fade,
	QuakeBody:  Scroll,
}

// ModeFor returns the presentation mode bound to a kind
func ModeFor(k Kind) Mode {
	return modeByKind[k]
}

// IsAlert reports whether items of this kind raise the earthquake alert
func IsAlert(k Kind) bool {
	return k == QuakeTitle || k == QuakeBody
}

// Item is one unit of renderable text or markup. Items are values and are
// never mutated after construction.
type Item struct {
	Kind    Kind
	Payload string
	// Link is the article URL for news items, empty otherwise
	Link string
}

// Queue is the ordered sequence presented by the scheduler. A queue is
// replaced wholesale on every refresh.
type Queue []Item

// NewsItem is one normalised news entry
type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
}

// Snapshot holds the latest result of every fetcher
type Snapshot struct {
	Quake   []Item
	Weather []string
	News    []NewsItem
}
