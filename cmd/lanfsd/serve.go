package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivoronin/lanfsd/internal/discovery"
	"github.com/ivoronin/lanfsd/internal/fanout"
	"github.com/ivoronin/lanfsd/internal/scanner"
	"github.com/ivoronin/lanfsd/internal/transport"
)

// DefaultPort is the well-known port every node's HTTP surface listens on,
// and the port discovery probes and fan-out requests target.
const DefaultPort = 10000

// shutdownTimeout bounds how long serve waits for in-flight requests to
// finish after receiving a termination signal.
const shutdownTimeout = 5 * time.Second

// serveOptions holds CLI flags for the serve command.
type serveOptions struct {
	port        int
	workers     int
	noProgress  bool
	noDiscovery bool
	maxConns    int
}

// newServeCmd creates the serve subcommand: start the HTTP surface, running
// LAN peer discovery once at startup per the spec's "immutable for the
// service lifetime" peer-set contract.
func newServeCmd() *cobra.Command {
	opts := &serveOptions{
		port:     DefaultPort,
		workers:  scanner.DefaultMaxWorkers,
		maxConns: discovery.DefaultMaxConns,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scan, search, and LAN fan-out requests over HTTP",
		Long: `Starts the /fs/... HTTP surface on the given port (10000 by default) and,
unless --no-discovery is set, probes every attached private subnet once at
startup for peers answering the health endpoint. The resulting peer set is
fixed for the life of the process and used to serve
/fs/search-directory-lan/ requests.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.port, "port", opts.port, "HTTP listen port")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Worker pool size for incoming scan requests")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output for in-flight scans")
	cmd.Flags().BoolVar(&opts.noDiscovery, "no-discovery", false, "Skip LAN peer discovery; /fs/search-directory-lan/ always returns no peers")
	cmd.Flags().IntVar(&opts.maxConns, "max-probe-conns", opts.maxConns, "Maximum concurrent discovery probes")

	return cmd
}

func runServe(ctx context.Context, opts *serveOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errors := make(chan error, 100)
	go drainErrors(errors)
	defer close(errors)

	var peers *discovery.PeerSet
	if !opts.noDiscovery {
		fmt.Fprintln(os.Stderr, "discovering LAN peers...")
		prober := discovery.NewProber(opts.port)
		var err error
		peers, err = discovery.Run(ctx, prober, opts.maxConns, !opts.noProgress)
		if err != nil {
			return fmt.Errorf("discover peers: %w", err)
		}
		fmt.Fprintf(os.Stderr, "found %d peer(s): %v\n", peers.Len(), peers.Peers())
	} else {
		peers = discovery.NewPeerSet(nil)
	}

	srv := &transport.Server{
		MaxWorkers:   opts.workers,
		ShowProgress: !opts.noProgress,
		ErrCh:        errors,
		Peers:        peers,
		Dispatcher:   fanout.NewDispatcher(opts.port),
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.port),
		Handler: srv.Handler(),
	}

	serveErr := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "listening on %s\n", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-serveErr:
		return err
	}
}
