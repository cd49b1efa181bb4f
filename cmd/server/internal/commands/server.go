package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talentstream/talentstream/internal/browser"
	"github.com/talentstream/talentstream/internal/gemini"
	"github.com/talentstream/talentstream/internal/logger"
	"github.com/talentstream/talentstream/internal/server"
	"github.com/talentstream/talentstream/internal/store"
	memorystore "github.com/talentstream/talentstream/internal/store/memory"
	postgresstore "github.com/talentstream/talentstream/internal/store/postgres"
	"github.com/talentstream/talentstream/internal/stream"
	"github.com/talentstream/talentstream/internal/telemetry"
)

type ServerCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"TALENTSTREAM_LISTEN"`
	Cert   string `help:"path to TLS cert file" default:"" env:"TALENTSTREAM_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"TALENTSTREAM_TLS_KEY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"*" env:"TALENTSTREAM_CORS_ORIGINS"`

	// Stream configuration
	HeartbeatInterval time.Duration `help:"interval between keepalive pings" default:"5s" env:"TALENTSTREAM_HEARTBEAT_INTERVAL"`
	MaxIdle           time.Duration `help:"maximum stream silence before timing out" default:"120s" env:"TALENTSTREAM_MAX_IDLE"`

	// Analyzer configuration
	GeminiAPIKey string `help:"Gemini API key" env:"GEMINI_API_KEY"`
	GeminiModel  string `help:"Gemini model name" default:"gemini-2.0-flash" env:"TALENTSTREAM_GEMINI_MODEL"`
	GitHubToken  string `help:"GitHub API token for higher rate limits" default:"" env:"TALENTSTREAM_GITHUB_TOKEN"`
	TasksFile    string `help:"analysis pipeline YAML, empty for the built-in pipeline" default:"" env:"TALENTSTREAM_TASKS_FILE"`
	CacheDir     string `help:"directory for the GitHub response cache, empty for in-memory" default:"" env:"TALENTSTREAM_CACHE_DIR"`

	// Browser agent configuration
	AgentCommand string   `help:"browser automation command for job searches" default:"talentstream-agent" env:"TALENTSTREAM_AGENT_COMMAND"`
	AgentArgs    []string `help:"extra arguments for the browser automation command" env:"TALENTSTREAM_AGENT_ARGS"`

	// Operational modes
	Tracing bool `help:"enable tracing" default:"false" env:"TALENTSTREAM_TRACING"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"TALENTSTREAM_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"10"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"TALENTSTREAM_POSTGRES_AUTO_MIGRATE"`
}

func (c *ServerCmd) Validate() error {
	if c.HeartbeatInterval <= 0 {
		return errors.New("heartbeat interval must be positive")
	}
	if c.MaxIdle <= c.HeartbeatInterval {
		return errors.New("max idle must be greater than the heartbeat interval")
	}
	if c.GeminiAPIKey == "" {
		return errors.New("Gemini API key is required (--gemini-api-key or GEMINI_API_KEY)")
	}
	if c.StoreType == "postgres" && c.PostgresStore.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, "talentstream-server", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	var sessions store.SearchStore
	switch c.StoreType {
	case "postgres":
		poolCfg := &postgresstore.PoolConfig{
			ConnString:      c.PostgresStore.ConnString,
			MaxConns:        c.PostgresStore.MaxConns,
			MinConns:        c.PostgresStore.MinConns,
			MaxConnLifetime: c.PostgresStore.MaxConnLifetime,
			MaxConnIdleTime: c.PostgresStore.MaxConnIdleTime,
		}

		pgStore, err := postgresstore.NewSessionStore(ctx, poolCfg, postgresstore.Config{
			AutoMigrate: c.PostgresStore.AutoMigrate,
		})
		if err != nil {
			return fmt.Errorf("failed to create session store: %w", err)
		}
		sessions = pgStore
		log.Info().Msg("Using PostgreSQL session store")

	default:
		sessions = memorystore.NewSessionStore()
		log.Info().Msg("Using in-memory session store")
	}
	defer sessions.Close()

	analyzer, err := gemini.NewAnalyzer(ctx, gemini.Config{
		APIKey:      c.GeminiAPIKey,
		Model:       c.GeminiModel,
		GitHubToken: c.GitHubToken,
		TasksFile:   c.TasksFile,
		CacheDir:    c.CacheDir,
	})
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	agent, err := browser.NewSubprocessAgent(browser.Config{
		Command: c.AgentCommand,
		Args:    c.AgentArgs,
	})
	if err != nil {
		return fmt.Errorf("failed to create browser agent: %w", err)
	}

	mux, err := stream.New(stream.Config{
		HeartbeatInterval: c.HeartbeatInterval,
		MaxIdle:           c.MaxIdle,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream multiplexer: %w", err)
	}

	srv := server.New(server.Config{
		CORSOrigins: c.CORSOrigins,
		Version:     globals.Version,
	}, mux, analyzer, agent, sessions, log)

	httpServer := configureHTTPServer(c.Listen, srv.Router())

	log.Info().Str("listen", c.Listen).Msg("Listening")
	if c.Cert != "" && c.Key != "" {
		return httpServer.ListenAndServeTLS(c.Cert, c.Key)
	}
	return httpServer.ListenAndServe()
}
