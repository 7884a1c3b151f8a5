// Package servecmder provides the serve command for running the API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pinholabs/sitelog/api"
	"github.com/pinholabs/sitelog/pkg/config"
	"github.com/pinholabs/sitelog/pkg/eventstream"
	"github.com/pinholabs/sitelog/pkg/eventstream/kafka"
	"github.com/pinholabs/sitelog/pkg/eventstream/nop"
	"github.com/pinholabs/sitelog/pkg/ingest"
	"github.com/pinholabs/sitelog/pkg/llm"
	"github.com/pinholabs/sitelog/pkg/llm/deepseek"
	"github.com/pinholabs/sitelog/pkg/logger"
	"github.com/pinholabs/sitelog/pkg/project"
	"github.com/pinholabs/sitelog/pkg/query"
	"github.com/pinholabs/sitelog/pkg/storage"
	"github.com/pinholabs/sitelog/pkg/storage/inmemory"
	"github.com/pinholabs/sitelog/pkg/storage/postgres"
	"github.com/pinholabs/sitelog/pkg/storage/sqlite"
)

type ServeCommander struct {
	listen  string
	backend string
	debug   bool

	cfg    *config.Config
	logger *zap.Logger
}

const serveLongDesc string = `Run the sitelog API server.

The server exposes note submission, natural-language queries, statistics,
and CSV export over HTTP. Storage backend, LLM credentials, and event
publishing are read from the config.toml in the .sitelog/ directory and
can be overridden with SITELOG_* environment variables.`

const serveShortDesc string = "Run the sitelog API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = config.ConfigFromViper(v)

			if cmd.Flags().Changed("listen") {
				cmder.cfg.API.Listen = cmder.listen
			}
			if cmd.Flags().Changed("backend") {
				cmder.cfg.Storage.Backend = cmder.backend
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", ":8081", "Address for API server to listen on")
	cmd.Flags().StringVarP(&cmder.backend, "backend", "b", "", "Storage backend (memory, sqlite, postgres)")

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	store, err := c.newStore()
	if err != nil {
		return err
	}
	defer store.Close()

	projects, err := c.newProjectDirectory()
	if err != nil {
		return err
	}

	events, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer events.Close()

	summarizer, answerer := c.newLLMClients()

	ingester := ingest.NewService(store, summarizer, projects, events, c.logger)
	querier := query.NewService(store, answerer, c.logger)

	server := api.NewServer(api.Config{ListenAddr: c.cfg.API.Listen}, store, ingester, querier, projects, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

func (c *ServeCommander) newStore() (storage.Store, error) {
	switch c.cfg.Storage.Backend {
	case "sqlite":
		path := c.cfg.Storage.SQLitePath
		if path == "" {
			return nil, fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
		}
		store, err := sqlite.NewStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite store: %w", err)
		}
		c.logger.Info("using SQLite storage", zap.String("path", path))
		return store, nil

	case "postgres":
		dsn := c.cfg.Storage.PostgresDSN
		if dsn == "" {
			return nil, fmt.Errorf("storage.postgres_dsn is required for the postgres backend")
		}
		store, err := postgres.NewStore(context.Background(), dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL store: %w", err)
		}
		c.logger.Info("using PostgreSQL storage")
		return store, nil

	case "", "memory":
		c.logger.Info("using in-memory storage")
		return inmemory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %q", c.cfg.Storage.Backend)
	}
}

func (c *ServeCommander) newProjectDirectory() (*project.Directory, error) {
	if c.cfg.Projects.Path == "" {
		c.logger.Info("using built-in project directory")
		return project.DefaultDirectory(), nil
	}

	projects, err := project.LoadDirectory(c.cfg.Projects.Path)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}

	c.logger.Info("loaded project directory",
		zap.String("path", c.cfg.Projects.Path),
		zap.Int("projects", len(projects.List())),
	)
	return projects, nil
}

func (c *ServeCommander) newPublisher() (eventstream.Publisher, error) {
	if !c.cfg.EventStream.Enabled {
		return nop.NewPublisher(), nil
	}

	publisher, err := kafka.NewPublisher(kafka.Config{
		Brokers: c.cfg.EventStream.Brokers,
		Topic:   c.cfg.EventStream.Topic,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	c.logger.Info("publishing note events",
		zap.Strings("brokers", c.cfg.EventStream.Brokers),
		zap.String("topic", c.cfg.EventStream.Topic),
	)
	return publisher, nil
}

// newLLMClients builds the summarizer and answerer. Without an API key both
// stay nil: ingestion degrades to fallback enrichment and queries are limited
// to the deterministic rules.
func (c *ServeCommander) newLLMClients() (llm.Summarizer, llm.Answerer) {
	if c.cfg.LLM.APIKey == "" {
		c.logger.Warn("no LLM API key configured, enrichment and free-text answers disabled")
		return nil, nil
	}

	client, err := deepseek.NewClient(deepseek.Config{
		BaseURL: c.cfg.LLM.BaseURL,
		APIKey:  c.cfg.LLM.APIKey,
		Model:   c.cfg.LLM.Model,
	})
	if err != nil {
		c.logger.Warn("failed to create LLM client, running degraded", zap.Error(err))
		return nil, nil
	}

	return client, client
}
