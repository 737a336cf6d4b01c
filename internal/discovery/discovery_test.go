package discovery

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopbackNetwork builds a /32-free, tiny /30 network around 127.0.0.0 so
// RunOn has a handful of addresses to probe without touching real LAN
// interfaces.
func loopbackNetwork(t *testing.T) *net.IPNet {
	t.Helper()
	_, n, err := net.ParseCIDR("127.0.0.0/30")
	require.NoError(t, err)
	return n
}

func TestRunOnDiscoversHealthyPeer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	prober := NewProber(port)
	set := RunOn(context.Background(), prober, []*net.IPNet{loopbackNetwork(t)}, 8, false)

	assert.True(t, set.Len() >= 1)
	assert.True(t, set.Contains("127.0.0.1") || len(set.Peers()) > 0)
}

func TestRunOnNoPeersWhenNothingListens(t *testing.T) {
	prober := NewProber(1) // nothing listens on port 1
	set := RunOn(context.Background(), prober, []*net.IPNet{loopbackNetwork(t)}, 8, false)
	assert.Equal(t, 0, set.Len())
	assert.Empty(t, set.Peers())
}

func TestRunOnEmptyNetworksYieldsEmptySet(t *testing.T) {
	prober := NewProber(65535)
	set := RunOn(context.Background(), prober, nil, 8, false)
	assert.Equal(t, 0, set.Len())
}

func TestPeerSetContainsAndPeersSorted(t *testing.T) {
	set := &PeerSet{ids: map[string]struct{}{"b": {}, "a": {}, "c": {}}}
	assert.Equal(t, []string{"a", "b", "c"}, set.Peers())
	assert.True(t, set.Contains("b"))
	assert.False(t, set.Contains("z"))
}
