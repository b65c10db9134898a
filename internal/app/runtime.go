package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spirelore/spirebot/internal/commands"
	"github.com/spirelore/spirebot/internal/config"
	"github.com/spirelore/spirebot/internal/connectors"
	"github.com/spirelore/spirebot/internal/connectors/discord"
	"github.com/spirelore/spirebot/internal/content"
	"github.com/spirelore/spirebot/internal/httpapi"
	"github.com/spirelore/spirebot/internal/render"
	"github.com/spirelore/spirebot/internal/resolve"
	"github.com/spirelore/spirebot/internal/search"
)

type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	index      *search.Index
	resolver   *resolve.Resolver
	connectors []connectors.Connector
	httpServer *http.Server
}

// New loads the content document, builds the in-memory index, and wires the
// connectors. The index is immutable for the life of the process: new content
// means a restart.
func New(cfg config.Config, version string, logger *slog.Logger) (*Runtime, error) {
	records, err := content.Load(cfg.DataFile)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	index := search.New()
	for _, record := range records {
		index.Add(record)
	}
	index.Add(content.HelpRecord())
	logger.Info("content index built", "records", index.Len(), "file", cfg.DataFile)

	resolver := resolve.New(index, commands.NewTable(version))
	renderer := render.New()

	connector := discord.New(
		cfg.DiscordToken,
		cfg.DiscordAPI,
		cfg.DiscordWSURL,
		resolver,
		renderer,
		logger,
		cfg.QueryLogRoot,
		cfg.QueryLimit,
		discord.WithPresence(cfg.DiscordPresence),
		discord.WithHistoryLimit(cfg.HistoryLimit),
		discord.WithSendRate(cfg.SendRatePerSec, cfg.SendBurst),
	)

	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.Dependencies{
			Index:       index,
			Version:     version,
			Environment: cfg.Environment,
			Logger:      logger.With("component", "httpapi"),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		index:      index,
		resolver:   resolver,
		connectors: []connectors.Connector{connector},
		httpServer: httpServer,
	}, nil
}

// Resolver exposes the query pipeline for offline use.
func (r *Runtime) Resolver() *resolve.Resolver {
	return r.resolver
}

func (r *Runtime) Run(ctx context.Context) error {
	r.logger.Info("spirebot runtime starting", "addr", r.cfg.HTTPAddr, "environment", r.cfg.Environment)

	group, groupCtx := errgroup.WithContext(ctx)
	for _, conn := range r.connectors {
		connector := conn
		group.Go(func() error {
			return connector.Start(groupCtx)
		})
	}
	group.Go(func() error {
		err := r.httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
