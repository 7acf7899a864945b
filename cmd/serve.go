package main

import (
	"context"
	"net/http"

	"github.com/desertthunder/bandfeed/internal/server"
	"github.com/desertthunder/bandfeed/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP search API until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}

	handler, err := r.httpHandler()
	if err != nil {
		return err
	}

	srv := server.New(cfg.Addr(), handler, shared.WithLogger(r.logger, "component", "server"))
	r.writePlain("Serving band search on http://%s/api/bands/search\n", srv.Addr())
	return srv.ListenAndServe(ctx)
}

// httpHandler builds the router: recovery outermost, then request logging and rate limiting.
func (r *Runner) httpHandler() (http.Handler, error) {
	resolver, err := r.searcher()
	if err != nil {
		return nil, err
	}

	logger := shared.WithLogger(r.logger, "component", "http")
	router := server.NewBasicRouter()
	router.Use(
		server.Recover(logger),
		server.Logging(logger),
		server.RateLimit(r.config.Server.RateLimit, r.config.Server.Burst),
	)
	router.Handler(server.NewBandHandler(resolver, r.bands, r.db, logger))
	return router, nil
}
