package feeds

import "ticker-frame/pkg/content"

// Placeholders shown in place of data that could not be fetched
const (
	WeatherErrorMarkup = "<span>天気取得エラー</span>"
	NewsErrorTitle     = "ニュース取得失敗"
)

// WeatherFallback is the result of a failed weather fetch
func WeatherFallback() []string {
	return []string{WeatherErrorMarkup}
}

// NewsFallback is the result of a failed news fetch
func NewsFallback() []content.NewsItem {
	return []content.NewsItem{{Title: NewsErrorTitle, Description: ""}}
}
