package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/electromart/agenthub/agent/agents/handlers"
	"github.com/electromart/agenthub/agent/agents/orchestrator"
	contractx "github.com/electromart/agenthub/agent/contract"
	llmx "github.com/electromart/agenthub/agent/llm"
	promptx "github.com/electromart/agenthub/agent/prompt"
	routerx "github.com/electromart/agenthub/agent/router"
	statex "github.com/electromart/agenthub/agent/state"
	toolx "github.com/electromart/agenthub/agent/tool"
	configx "github.com/electromart/agenthub/pkg/config"
	_ "github.com/electromart/agenthub/pkg/logger/autoload"
	"github.com/electromart/agenthub/pkg/mailer"
	openaix "github.com/electromart/agenthub/pkg/openai"
	serverx "github.com/electromart/agenthub/server"
)

// AppConfig selects the persistence driver for conversation state.
// The message log always shares the driver with the state store.
type AppConfig struct {
	StoreDriver string `envconfig:"STORE_DRIVER" split_words:"true" default:"memory"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" split_words:"true"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat backend",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	appCfg := configx.MustNew[AppConfig]("APP")
	llmCfg := configx.MustNew[llmx.Config]("OPENAI")
	serverCfg := configx.MustNew[serverx.Config]("SERVER")
	mailCfg := configx.MustNew[mailer.Config]("SMTP")

	db, err := openDatabase(appCfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	var notifier contractx.Notifier = toolx.NoopNotifier{}
	if mailCfg.Enabled() {
		notifier = mailer.New(*mailCfg)
	}

	gateway, err := toolx.NewGateway(db, nil, notifier)
	if err != nil {
		return fmt.Errorf("build tool gateway: %w", err)
	}
	if err := gateway.CreateTables(ctx); err != nil {
		return fmt.Errorf("create domain tables: %w", err)
	}

	if err := buildFAQIndex(ctx, gateway, *llmCfg); err != nil {
		log.Warn().Err(err).Msg("serve: FAQ index unavailable, support answers degrade to keyword search")
	}

	store, msgLog, err := openStateStore(ctx, *appCfg, db)
	if err != nil {
		return err
	}

	prompts := promptx.LoadPromptSet()
	completers, routerCompleter, err := buildCompleters(ctx, *llmCfg)
	if err != nil {
		return err
	}

	registry := handlers.NewRegistry(gateway, completers, prompts)
	rt := routerx.New(routerCompleter, prompts.Router)

	svc, err := orchestrator.New(ctx, store, msgLog, rt, registry)
	if err != nil {
		return err
	}

	srv := serverx.New(*serverCfg, svc)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	log.Info().Msg("serve: shutting down")
	return srv.Shutdown(shutdownCtx)
}

func openDatabase(dsn string) (*bun.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("APP_POSTGRES_DSN is required for the product catalog")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func openStateStore(ctx context.Context, cfg AppConfig, db *bun.DB) (statex.Store, statex.MessageLog, error) {
	switch cfg.StoreDriver {
	case "memory":
		s := statex.NewMemoryStore()
		return s, s, nil
	case "redis":
		redisCfg := configx.MustNew[statex.RedisConfig]("REDIS")
		s := statex.NewRedisStore(*redisCfg)
		return s, s, nil
	case "postgres":
		s := statex.NewPostgresStore(db)
		if err := s.CreateTables(ctx); err != nil {
			return nil, nil, fmt.Errorf("create state tables: %w", err)
		}
		return s, s, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func buildFAQIndex(ctx context.Context, gateway *toolx.Gateway, llmCfg llmx.Config) error {
	entries, err := gateway.LoadFAQEntries(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no FAQ entries loaded")
	}

	var embedder toolx.Embedder
	if e := openaix.NewEmbedder(llmCfg.Config); e != nil {
		embedder = e
	}

	idx, err := toolx.NewFAQIndex(ctx, entries, embedder)
	if err != nil {
		return err
	}
	gateway.SetFAQIndex(idx)
	return nil
}

func buildCompleters(ctx context.Context, cfg llmx.Config) (handlers.Completers, contractx.Completer, error) {
	routerCompleter, err := llmx.New(ctx, cfg, llmx.RouterRoute)
	if err != nil {
		return handlers.Completers{}, nil, err
	}

	var out handlers.Completers
	if out.Sales, err = llmx.New(ctx, cfg, contractx.RouteSales); err != nil {
		return handlers.Completers{}, nil, err
	}
	if out.Marketing, err = llmx.New(ctx, cfg, contractx.RouteMarketing); err != nil {
		return handlers.Completers{}, nil, err
	}
	if out.Support, err = llmx.New(ctx, cfg, contractx.RouteSupport); err != nil {
		return handlers.Completers{}, nil, err
	}
	if out.Orders, err = llmx.New(ctx, cfg, contractx.RouteOrders); err != nil {
		return handlers.Completers{}, nil, err
	}
	return out, routerCompleter, nil
}
