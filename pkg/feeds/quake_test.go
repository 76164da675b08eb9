package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticker-frame/pkg/content"
)

const quakeJSON = `[{
  "time": "2024/01/01 16:10:09.000",
  "earthquake": {
    "maxScale": 70,
    "hypocenter": {"name": "石川県能登地方", "depth": 10, "magnitude": 7.6}
  },
  "points": [
    {"addr": "志賀町香能", "scale": 70},
    {"addr": "輪島市門前町", "scale": 60},
    {"addr": "志賀町香能", "scale": 70},
    {"addr": "", "scale": 70}
  ]
}]`

func tokyo(t *testing.T) *time.Location {
	t.Helper()
	return time.FixedZone("JST", 9*60*60)
}

func TestQuakeFetchRendersAlert(t *testing.T) {
	srv := serve(t, http.StatusOK, quakeJSON)
	f := NewQuakeFetcher(testClient(), srv.URL, tokyo(t), 0)

	got := f.Fetch(context.Background())

	require.Len(t, got, 2)
	assert.Equal(t, content.Item{Kind: content.QuakeTitle, Payload: "【地震情報】石川県能登地方で最大震度7を観測"}, got[0])
	assert.Equal(t, content.QuakeBody, got[1].Kind)
	assert.Equal(t,
		"1日16時10分頃、石川県能登地方で最大震度7を観測する地震がありました。"+
			"震源地は石川県能登地方で震源の深さは10km、地震の規模を示すマグニチュードはM7.6と推定されています。"+
			"震度7を志賀町香能、不明な地域で観測しました。　-　 情報:P2P地震情報API",
		got[1].Payload)
}

func TestQuakeFetchUnknownValues(t *testing.T) {
	srv := serve(t, http.StatusOK, `[{
	  "time": "2024/02/03 04:05:06",
	  "earthquake": {"maxScale": -1, "hypocenter": {"name": "", "depth": -1, "magnitude": -1}},
	  "points": [{"addr": "どこか", "scale": -1}]
	}]`)
	f := NewQuakeFetcher(testClient(), srv.URL, tokyo(t), 0)

	got := f.Fetch(context.Background())

	require.Len(t, got, 2)
	assert.Equal(t, "【地震情報】震源地不明で最大震度不明を観測", got[0].Payload)
	assert.Contains(t, got[1].Payload, "3日4時5分頃")
	assert.Contains(t, got[1].Payload, "震源の深さは不明km")
	assert.Contains(t, got[1].Payload, "マグニチュードはM不明")
	assert.Contains(t, got[1].Payload, "震度不明を不明な地域で観測しました。")
}

func TestScaleLabel(t *testing.T) {
	assert.Equal(t, "5弱", ScaleLabel(45))
	assert.Equal(t, "6強", ScaleLabel(60))
	assert.Equal(t, "不明", ScaleLabel(99))
}

func TestQuakeFetchKeepsPreviousOnEmptyHistory(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			_, _ = w.Write([]byte(quakeJSON))
		case 2:
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	f := NewQuakeFetcher(testClient(), srv.URL, tokyo(t), 0)

	first := f.Fetch(context.Background())
	require.Len(t, first, 2)

	second := f.Fetch(context.Background())
	assert.Equal(t, first, second)

	assert.Empty(t, f.Fetch(context.Background()))
}

func TestQuakeFetchFailuresYieldNoAlert(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusServiceUnavailable, ""},
		{"malformed payload", http.StatusOK, `{"not": "a list"}`},
		{"bad time", http.StatusOK, `[{"time": "yesterday", "earthquake": {"maxScale": 10}}]`},
		{"empty history", http.StatusOK, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			f := NewQuakeFetcher(testClient(), srv.URL, tokyo(t), 0)
			assert.Empty(t, f.Fetch(context.Background()))
		})
	}
}

func TestQuakeFetchMaxAge(t *testing.T) {
	srv := serve(t, http.StatusOK, quakeJSON)
	loc := tokyo(t)
	f := NewQuakeFetcher(testClient(), srv.URL, loc, 24*time.Hour)

	f.now = func() time.Time { return time.Date(2024, 1, 1, 20, 0, 0, 0, loc) }
	assert.Len(t, f.Fetch(context.Background()), 2)

	f.now = func() time.Time { return time.Date(2024, 1, 3, 0, 0, 0, 0, loc) }
	assert.Empty(t, f.Fetch(context.Background()))
}
