// Package discovery implements the LAN peer discovery subsystem: a health
// prober (C6) and the bounded fan-out engine that drives it across every
// attached private subnet (C7).
//
// No package in the teacher touches HTTP at all; the "short-deadline client
// probe" shape here is grounded on upspin-upspin's rpc client, which issues
// bounded-context HTTP calls against a peer server.
package discovery

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// HealthPath is the well-known health-check endpoint every node exposes.
const HealthPath = "/fs/health/"

// ProbeDeadline is the hard per-probe timeout: a probe that doesn't complete
// in this window is treated as "not a peer", not as an error.
const ProbeDeadline = 300 * time.Millisecond

// Prober probes a single address for a healthy peer.
type Prober struct {
	Client *http.Client
	Port   int
}

// NewProber creates a Prober targeting the given port with a client whose
// own timeout is ProbeDeadline plus 50ms (the context deadline set per-call
// is the actual enforcement point; the client timeout is a backstop).
func NewProber(port int) *Prober {
	return &Prober{
		Client: &http.Client{Timeout: ProbeDeadline + 50*time.Millisecond},
		Port:   port,
	}
}

// Probe issues an HTTP GET to addr's health endpoint with a 300ms deadline.
// It returns (peerID, true) iff the response status is 200; any timeout,
// connection error, or non-200 status is reported as (_, false), never as an
// error — an unhealthy or unreachable address is simply not a peer.
//
// When the probe succeeds, Probe attempts a reverse-DNS lookup on addr and
// returns the resolved hostname; if none resolves, the dotted address is
// returned instead.
func (p *Prober) Probe(ctx context.Context, addr net.IP) (peerID string, healthy bool) {
	ctx, cancel := context.WithTimeout(ctx, ProbeDeadline)
	defer cancel()

	url := fmt.Sprintf("http://%s:%d%s", addr.String(), p.Port, HealthPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	return resolvePeerID(addr), true
}

func resolvePeerID(addr net.IP) string {
	names, err := net.LookupAddr(addr.String())
	if err == nil && len(names) > 0 {
		return strings.TrimSuffix(names[0], ".")
	}
	return addr.String()
}
