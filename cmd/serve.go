package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roamly/internal/server"
	"github.com/desertthunder/roamly/internal/session"
	"github.com/desertthunder/roamly/internal/shared"
	"github.com/desertthunder/roamly/internal/web"
)

// Serve runs the local web front until interrupted.
//
// The front serves a single session backed by the runner's token store, so it listens on loopback by default.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}

	logger := shared.WithLogger(r.logger, "component", "web")
	flash := &session.Recorder{}
	sess, acts := r.build(session.Multi{flash, session.LogNotifier{Logger: logger}})

	app, err := web.New(web.Opts{Session: sess, Actions: acts, Flash: flash, Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to build web front: %w", err)
	}

	router := server.NewBasicRouter()
	router.Use(server.WithRequestID(), server.Logging(logger), server.Recover(logger))
	router.Handler(app)

	go sess.Hydrate(ctx)

	ready := make(chan string, 1)
	go func() {
		select {
		case addr := <-ready:
			url := "http://" + browserAddr(addr)
			r.writePlain("→ Serving Roamly at %s (Ctrl+C to stop)\n", url)
			if cmd.Bool("open") {
				if err := shared.OpenBrowser(url); err != nil {
					r.logger.Warn("could not open browser", "error", err)
				}
			}
		case <-ctx.Done():
		}
	}()

	return server.ListenAndServe(ctx, cfg.Addr(), router, logger, ready)
}

// browserAddr replaces a wildcard host with loopback so the printed URL is reachable.
func browserAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "127.0.0.1"
	}
	if _, err := strconv.Atoi(port); err != nil {
		return addr
	}
	return net.JoinHostPort(host, port)
}
