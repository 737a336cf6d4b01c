// Package transport is the thin HTTP surface wrapping the scan, discovery,
// and fan-out core: request decoding, response encoding, and gzip
// compression only — no scan logic lives here.
package transport

import (
	"compress/gzip"
	"encoding/json"
	"net/http"

	"github.com/NYTimes/gziphandler"

	"github.com/ivoronin/lanfsd/internal/bucket"
	"github.com/ivoronin/lanfsd/internal/config"
	"github.com/ivoronin/lanfsd/internal/discovery"
	"github.com/ivoronin/lanfsd/internal/fanout"
	"github.com/ivoronin/lanfsd/internal/fileread"
	"github.com/ivoronin/lanfsd/internal/scan"
)

// minGzipSize matches the spec's ">1KB gets compressed" threshold.
const minGzipSize = 1024

// Server wires the /fs/... endpoints to the core facade. Peers is set once
// when the Server is built (discovery runs once at startup and is immutable
// thereafter) and read by every LAN search request; a nil or empty PeerSet
// just makes LAN search trivially empty.
type Server struct {
	MaxWorkers   int
	ShowProgress bool
	ErrCh        chan<- error
	Peers        *discovery.PeerSet
	Dispatcher   *fanout.Dispatcher
}

// Handler builds the complete /fs/... mux, gzip-wrapped per the spec's
// ">1KB" response compression rule.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/fs/health/", s.handleHealth)
	mux.HandleFunc("/fs/deep-scan/", s.handleDeepScan)
	mux.HandleFunc("/fs/shallow-scan/", s.handleShallowScan)
	mux.HandleFunc("/fs/search-directory/", s.handleSearchDirectory)
	mux.HandleFunc("/fs/search-directory-lan/", s.handleSearchDirectoryLAN)
	mux.HandleFunc("/fs/get-file-contents/", s.handleGetFileContents)

	gz, err := gziphandler.GzipHandlerWithOpts(
		gziphandler.CompressionLevel(gzip.DefaultCompression),
		gziphandler.MinSize(minGzipSize),
	)
	if err != nil {
		// Only returned for invalid option values, which are fixed above.
		panic(err)
	}
	return gz(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeepScan(w http.ResponseWriter, r *http.Request) {
	var cfg config.ScanConfig
	if !decodeJSON(w, r, &cfg) {
		return
	}

	tree, summary, err := scan.DeepScan(&cfg, s.MaxWorkers, s.ShowProgress, s.ErrCh)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"result": bucket.New(cfg.RootPath)})
		s.sendErr(err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": map[string]int{
			"dir_count":   summary.Dirs,
			"file_count":  summary.Files,
			"error_count": summary.Errors,
		},
		"result": tree,
	})
}

func (s *Server) handleShallowScan(w http.ResponseWriter, r *http.Request) {
	var cfg config.ScanConfig
	if !decodeJSON(w, r, &cfg) {
		return
	}

	projection, err := scan.ShallowScan(&cfg)
	if err != nil {
		s.sendErr(err)
		writeJSON(w, http.StatusOK, map[string]any{"result": bucket.ShallowProjection{Path: cfg.RootPath, Err: err.Error()}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": projection})
}

func (s *Server) handleSearchDirectory(w http.ResponseWriter, r *http.Request) {
	var cfg config.SearchScanConfig
	if !decodeJSON(w, r, &cfg) {
		return
	}

	result, count, err := scan.SearchScan(&cfg, s.MaxWorkers, s.ShowProgress, s.ErrCh)
	if err != nil {
		s.sendErr(err)
		writeJSON(w, http.StatusOK, map[string]any{"count": 0, "result": map[string][]string{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": count, "result": result})
}

func (s *Server) handleSearchDirectoryLAN(w http.ResponseWriter, r *http.Request) {
	var cfg config.SearchScanConfig
	if !decodeJSON(w, r, &cfg) {
		return
	}

	var results map[string]fanout.Result
	if s.Peers != nil && s.Dispatcher != nil {
		results = s.Dispatcher.Broadcast(r.Context(), s.Peers, &cfg)
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

type pathRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleGetFileContents(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lines, err := fileread.Lines(req.Path)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"lines": []string{}, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lines": lines})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) sendErr(err error) {
	if s.ErrCh != nil {
		s.ErrCh <- err
	}
}
