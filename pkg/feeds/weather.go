package feeds

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log"
	"strings"

	"golang.org/x/net/html/charset"
)

// WeatherFetcher reads the forecast XML and renders one markup snippet per
// observation point
type WeatherFetcher struct {
	client      *Client
	url         string
	iconBaseURL string
}

// NewWeatherFetcher creates a weather fetcher. Icons are addressed as
// iconBaseURL + code + ".png".
func NewWeatherFetcher(client *Client, url, iconBaseURL string) *WeatherFetcher {
	return &WeatherFetcher{client: client, url: url, iconBaseURL: iconBaseURL}
}

type weatherPoint struct {
	id      string
	name    string
	weather string
}

// Fetch returns the rendered points in document order, one per point id.
// Any failure yields WeatherFallback.
func (f *WeatherFetcher) Fetch(ctx context.Context) []string {
	body, err := f.client.Get(ctx, f.url)
	if err != nil {
		log.Printf("WeatherFetcher.Fetch: %s: %v", f.url, err)
		return WeatherFallback()
	}

	points, err := parseWeatherPoints(bytes.NewReader(body))
	if err != nil {
		log.Printf("WeatherFetcher.Fetch: malformed document: %v", err)
		return WeatherFallback()
	}
	if len(points) == 0 {
		log.Printf("WeatherFetcher.Fetch: no points in document")
		return WeatherFallback()
	}

	seen := make(map[string]bool, len(points))
	markups := make([]string, 0, len(points))
	for _, p := range points {
		if seen[p.id] {
			continue
		}
		seen[p.id] = true
		markups = append(markups, f.render(p))
	}

	log.Printf("WeatherFetcher.Fetch completed | points=%d unique=%d", len(points), len(markups))
	return markups
}

func (f *WeatherFetcher) render(p weatherPoint) string {
	code := strings.TrimSpace(strings.Split(strings.TrimSpace(p.weather), ",")[0])
	name := "<span>" + html.EscapeString(p.name) + "</span>"
	if code == "" {
		return name
	}
	icon := f.iconBaseURL + code + ".png"
	return fmt.Sprintf(`<img src="%s" alt="icon">%s`, html.EscapeString(icon), name)
}

// parseWeatherPoints collects every point element at any depth together
// with the text of the first weather element nested inside it
func parseWeatherPoints(r io.Reader) ([]weatherPoint, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		points     []weatherPoint
		cur        *weatherPoint
		hasWeather bool
		inWeather  bool
		depth      int
		pointDepth int
		sawRoot    bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			switch {
			case t.Name.Local == "point" && cur == nil:
				cur = &weatherPoint{id: attr(t, "id"), name: attr(t, "name")}
				hasWeather = false
				pointDepth = depth
			case t.Name.Local == "weather" && cur != nil && !hasWeather:
				hasWeather = true
				inWeather = true
			}
			depth++
		case xml.EndElement:
			depth--
			if inWeather && t.Name.Local == "weather" {
				inWeather = false
			}
			if cur != nil && t.Name.Local == "point" && depth == pointDepth {
				points = append(points, *cur)
				cur = nil
			}
		case xml.CharData:
			if inWeather {
				cur.weather += string(t)
			}
		}
	}

	if !sawRoot {
		return nil, errors.New("document has no elements")
	}
	return points, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
