package feeds

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostPacerSpacesSameHost(t *testing.T) {
	p := newHostPacer(80 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, p.wait(ctx, "https://weathernews.jp/a.xml"))
	start := time.Now()
	require.NoError(t, p.wait(ctx, "https://weathernews.jp/b.png"))
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestHostPacerHostsAreIndependent(t *testing.T) {
	p := newHostPacer(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, p.wait(ctx, "https://weathernews.jp/a.xml"))
	require.NoError(t, p.wait(ctx, "https://api.p2pquake.net/v2/history"))
}

func TestHostPacerZeroIntervalNeverWaits(t *testing.T) {
	p := newHostPacer(0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 5; i++ {
		require.NoError(t, p.wait(ctx, "https://weathernews.jp/a.xml"))
	}
}

func TestHostPacerErrors(t *testing.T) {
	p := newHostPacer(time.Hour)

	assert.Error(t, p.wait(context.Background(), "/relative/path"))
	assert.Error(t, p.wait(context.Background(), "http://[::1"))

	require.NoError(t, p.wait(context.Background(), "https://weathernews.jp/"))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, p.wait(ctx, "https://weathernews.jp/"))
}

func TestClientsDoNotShareHostPacing(t *testing.T) {
	weather := NewClient(DefaultTimeout, time.Hour)
	iconsClient := NewClient(DefaultTimeout, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, iconsClient.Wait(ctx, "https://weathernews.jp/s/topics/img/wxicon/100.png"))
	require.NoError(t, weather.Wait(ctx, "https://weathernews.jp/forecast/xml/all.xml"))
}
