package discovery

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/ivoronin/lanfsd/internal/concurrency"
	"github.com/ivoronin/lanfsd/internal/progress"
	"github.com/ivoronin/lanfsd/internal/subnet"
)

// DefaultMaxConns bounds how many probes may be in flight at once, matching
// the 256-connection ceiling the distilled spec's design notes call out.
const DefaultMaxConns = 256

// PeerSet is the immutable result of a discovery run: the set of peer IDs
// (reverse-DNS names, falling back to dotted addresses) that answered their
// health probe.
type PeerSet struct {
	ids map[string]struct{}
}

// NewPeerSet builds a PeerSet from an explicit list of peer IDs, for tests
// and any caller that already knows its peers without running discovery.
func NewPeerSet(ids []string) *PeerSet {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &PeerSet{ids: set}
}

// Contains reports whether id is a known peer.
func (s *PeerSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of discovered peers.
func (s *PeerSet) Len() int {
	return len(s.ids)
}

// Peers returns the discovered peer IDs in sorted order.
func (s *PeerSet) Peers() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// stats tracks discovery progress using atomic counters, mirroring the
// scanner's lock-free progress pattern.
type stats struct {
	probed    atomic.Int64
	found     atomic.Int64
	startTime time.Time
}

func (s *stats) String() string {
	return fmt.Sprintf("Probed %s addresses, found %s peers in %.1fs",
		humanize.Comma(s.probed.Load()), humanize.Comma(s.found.Load()),
		time.Since(s.startTime).Seconds())
}

// Run discovers every peer attached to the host's private subnets: it
// enumerates attached networks via subnet.Attached(), then probes every host
// address in every network (C7). A probe failure (timeout, connection
// refused, non-200) is never a discovery failure — only a failure to
// enumerate the host's own interfaces aborts the run.
func Run(ctx context.Context, prober *Prober, maxConns int, showProgress bool) (*PeerSet, error) {
	networks, err := subnet.Attached()
	if err != nil {
		return nil, fmt.Errorf("discover attached networks: %w", err)
	}
	return RunOn(ctx, prober, networks, maxConns, showProgress), nil
}

// RunOn probes every host address across the given networks. It is split
// out from Run so tests can supply synthetic networks instead of depending
// on the test host's actual interfaces.
func RunOn(ctx context.Context, prober *Prober, networks []*net.IPNet, maxConns int, showProgress bool) *PeerSet {
	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}

	st := &stats{startTime: time.Now()}
	bar := progress.New(showProgress)
	bar.Describe(st)

	sem := concurrency.NewSemaphore(maxConns)
	var mu sync.Mutex
	ids := make(map[string]struct{})

	var g errgroup.Group
	for _, n := range networks {
		for _, addr := range subnet.HostAddrs(n) {
			addr := addr
			sem.Acquire()
			g.Go(func() error {
				defer sem.Release()
				peer, ok := prober.Probe(ctx, addr)
				st.probed.Add(1)
				if ok {
					mu.Lock()
					ids[peer] = struct{}{}
					mu.Unlock()
					st.found.Add(1)
				}
				return nil // probe failures are expected traffic, never propagated
			})
		}
	}
	_ = g.Wait() // no Go call above ever returns a non-nil error

	bar.Finish(st)
	return &PeerSet{ids: ids}
}
