package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tagus/physai-agent/pkg/assistant"
	"github.com/tagus/physai-agent/pkg/config"
	"github.com/tagus/physai-agent/pkg/logging"
	"github.com/tagus/physai-agent/pkg/microservice"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "physai: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "optional config file (yaml, json or toml)")
	ask := flag.String("ask", "", "answer a single question and exit")
	serve := flag.Bool("serve", false, "serve the chat API for the docs site")
	flag.Parse()

	logger := logging.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	a, err := assistant.New(ctx, cfg, assistant.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(shutdownCtx); err != nil {
			logger.Warn(shutdownCtx, "Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	switch {
	case *ask != "":
		result, err := a.Ask(ctx, *ask)
		if err != nil {
			return err
		}
		fmt.Println(result.FinalOutput)
		return nil
	case *serve:
		server := microservice.NewHTTPServer(a, a.Agent.GetName(),
			microservice.WithAllowedOrigin(cfg.Server.AllowedOrigin),
			microservice.WithLogger(logger),
		)
		errCh := make(chan error, 1)
		go func() { errCh <- server.Start(cfg.Server.Port) }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	default:
		logger.Info(ctx, "Run configuration ready", map[string]interface{}{
			"agent":            a.Agent.GetName(),
			"tracing_disabled": a.RunConfig.TracingDisabled,
		})
		return nil
	}
}
