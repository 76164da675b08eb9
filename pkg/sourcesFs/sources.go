package sourcesFs

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"ticker-frame/pkg/feeds"
)

// Sources lists the endpoints the ticker pulls from
type Sources struct {
	WeatherURL  string             `json:"weatherUrl"`
	IconBaseURL string             `json:"iconBaseUrl"`
	QuakeURL    string             `json:"quakeUrl"`
	News        []feeds.NewsSource `json:"news"`
}

// Defaults returns the built-in public endpoints
func Defaults() Sources {
	return Sources{
		WeatherURL:  "https://weathernews.jp/forecast/xml/all.xml",
		IconBaseURL: "https://weathernews.jp/s/topics/img/wxicon/",
		QuakeURL:    "https://api.p2pquake.net/v2/history?codes=551&limit=1",
		News: []feeds.NewsSource{
			{URL: "https://api.rss2json.com/v1/api.json?rss_url=https://www.nhk.or.jp/rss/news/cat0.xml", Format: feeds.FormatRSS2JSON},
			{URL: "https://api.rss2json.com/v1/api.json?rss_url=https://www.nhk.or.jp/rss/news/cat1.xml", Format: feeds.FormatRSS2JSON},
		},
	}
}

// Decode reads a sources document. Fields left out keep their defaults; a
// news list replaces the default list as a whole.
func Decode(r io.Reader) (Sources, error) {
	s := Defaults()
	var doc Sources
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return s, fmt.Errorf("decode sources: %w", err)
	}

	if doc.WeatherURL != "" {
		s.WeatherURL = doc.WeatherURL
	}
	if doc.IconBaseURL != "" {
		s.IconBaseURL = doc.IconBaseURL
	}
	if doc.QuakeURL != "" {
		s.QuakeURL = doc.QuakeURL
	}

	if len(doc.News) > 0 {
		s.News = s.News[:0:0]
		for _, src := range doc.News {
			if src.URL == "" {
				continue
			}
			if src.Format == "" {
				src.Format = feeds.FormatRSS2JSON
			}
			s.News = append(s.News, src)
		}
	}

	return s, nil
}

// LoadFile reads a sources document from disk
func LoadFile(path string) (Sources, error) {
	f, err := os.Open(path)
	if err != nil {
		return Defaults(), fmt.Errorf("open sources file: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return Defaults(), err
	}
	log.Printf("LoadFile completed | path=%s | news=%d", path, len(s.News))
	return s, nil
}
