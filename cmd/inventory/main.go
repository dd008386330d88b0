package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/nexus-inventory/internal/application/form"
	"github.com/jhoicas/nexus-inventory/internal/application/inventory"
	"github.com/jhoicas/nexus-inventory/internal/application/session"
	"github.com/jhoicas/nexus-inventory/internal/infrastructure/store"
	"github.com/jhoicas/nexus-inventory/internal/interfaces/cli"
	"github.com/jhoicas/nexus-inventory/pkg/config"
	"github.com/jhoicas/nexus-inventory/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Gateway: la elección remoto/mock ocurre aquí y solo aquí.
	recordStore := store.New(cfg.Supabase, log)

	sessions := session.NewManager(recordStore, log, session.Policy{
		AutoLogin: cfg.Auth.AutoLogin,
	})
	defer sessions.Close()

	inv := inventory.NewViewModel(recordStore, log)
	productForm := form.New(inv, sessions)

	repl := cli.New(sessions, inv, productForm, log, os.Stdin, os.Stdout)
	if err := repl.Run(ctx); err != nil {
		log.Error().Err(err).Msg("REPL finalizado con error")
	}

	log.Info().Msg("aplicación detenida")
}
