package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"dishmatch"
	"dishmatch/cmd/recommender/internal/setup"
)

func main() {
	dump := flag.Bool("dump", false, "dump the full result structure before printing it")
	instrumented := flag.Bool("otel", false, "export traces and metrics over OTLP")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load .env: %s", err)
	}

	ctx := context.Background()

	cfg, err := setup.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	prompt := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if prompt == "" {
		prompt = "vegetarian north indian food under 500 in Pune"
	}

	if *instrumented {
		tracerProvider, _, otelShutdown, err := dishmatch.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		var span trace.Span
		ctx, span = tracerProvider.Tracer(dishmatch.TracerNameEngine).Start(ctx, "recommender.cli", trace.WithAttributes(
			attribute.String("oracle.provider", cfg.Engine.OracleProvider),
			attribute.String("model.id", cfg.Model.ModelID),
			attribute.String("catalog.source", cfg.Catalog.Source),
		))
		defer span.End()
	}

	logger, cleanup, err := newRunLogger(cfg.Engine.RunLogDir, cfg.Engine.OracleProvider+"_"+cfg.Model.ModelID)
	if err != nil {
		slog.Error("SETUP: Failed to create run logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("Failed to flush run log", "error", err)
		}
	}()

	svc, err := setup.NewService(ctx, cfg, http.DefaultClient, logger)
	if err != nil {
		slog.Error("SETUP: Failed to create service", "error", err)
		return
	}
	defer func() {
		if err := svc.Close(); err != nil {
			slog.Error("SETUP: Failed to close catalog source", "error", err)
		}
	}()

	res, err := svc.Handle(ctx, prompt)
	if err != nil {
		return
	}

	if *dump {
		dishmatch.Dump(res)
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		slog.Error("RESULT: Failed to encode result", "error", err)
		return
	}
	fmt.Println(string(out))
}

func newRunLogger(dir, name string) (dishmatch.RunLogger, func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	logFilePath := dishmatch.NewRunLogFilePath(dir, name)
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := dishmatch.NewFileRunLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
