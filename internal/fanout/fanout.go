// Package fanout implements the LAN-wide search broadcast (C8): a search
// configuration is POSTed to every discovered peer concurrently, and every
// peer's result (success or failure) is collected into a single aggregate
// map, regardless of how many peers fail.
package fanout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ivoronin/lanfsd/internal/config"
	"github.com/ivoronin/lanfsd/internal/discovery"
)

// SearchPath is the peer-side endpoint every fan-out request targets.
const SearchPath = "/fs/search-directory/"

// ClientTimeout bounds a single peer's round trip; a peer that exceeds it is
// reported as a per-peer failure, never as a reason to abort the others.
const ClientTimeout = 30 * time.Second

// errorKey is the distinguished result key a failed peer's pseudo-result
// carries its message under, matching the wire shape
// {count:0, result:{"__error__":[msg]}}.
const errorKey = "__error__"

// Result is one peer's search outcome. Err is set (and Count/Matches left
// zero) when the peer could not be reached or returned something unusable;
// it is never fatal to the overall fan-out.
type Result struct {
	Count   int
	Matches map[string][]string
	Err     string
}

// MarshalJSON encodes a failed Result as the peer-scoped pseudo-result
// {count:0, result:{"__error__":[msg]}}, and a successful one as
// {count, result}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != "" {
		return json.Marshal(struct {
			Count  int                 `json:"count"`
			Result map[string][]string `json:"result"`
		}{Count: 0, Result: map[string][]string{errorKey: {r.Err}}})
	}
	return json.Marshal(struct {
		Count  int                 `json:"count"`
		Result map[string][]string `json:"result"`
	}{Count: r.Count, Result: r.Matches})
}

// searchResponse mirrors the peer's /fs/search-directory/ response body.
type searchResponse struct {
	Count  int                 `json:"count"`
	Result map[string][]string `json:"result"`
}

// Dispatcher broadcasts search requests to a fixed peer set.
type Dispatcher struct {
	Client *http.Client
	Port   int
}

// NewDispatcher creates a Dispatcher targeting the given port.
func NewDispatcher(port int) *Dispatcher {
	return &Dispatcher{Client: &http.Client{Timeout: ClientTimeout}, Port: port}
}

// Broadcast sends cfg to every peer in set concurrently and waits for all of
// them to finish (or time out) before returning — no peer's failure cancels
// another's in-flight request.
func (d *Dispatcher) Broadcast(ctx context.Context, set *discovery.PeerSet, cfg *config.SearchScanConfig) map[string]Result {
	peers := set.Peers()
	results := make(map[string]Result, len(peers))
	if len(peers) == 0 {
		return results
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(len(peers))
	for _, peer := range peers {
		peer := peer
		go func() {
			defer wg.Done()
			res := d.dispatchOne(ctx, peer, cfg)
			mu.Lock()
			results[peer] = res
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}

func (d *Dispatcher) dispatchOne(ctx context.Context, peer string, cfg *config.SearchScanConfig) Result {
	body, err := json.Marshal(cfg)
	if err != nil {
		return Result{Err: fmt.Sprintf("encode request: %s", err)}
	}

	url := fmt.Sprintf("http://%s:%d%s", peer, d.Port, SearchPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Err: fmt.Sprintf("build request: %s", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return Result{Err: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Err: fmt.Sprintf("read response: %s", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{Err: fmt.Sprintf("peer returned status %d", resp.StatusCode)}
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Result{Err: fmt.Sprintf("decode response: %s", err)}
	}
	return Result{Count: parsed.Count, Matches: parsed.Result}
}
