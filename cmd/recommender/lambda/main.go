package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"

	"dishmatch"
	"dishmatch/cmd/recommender/internal/setup"
	"dishmatch/recommend"
)

type Params struct {
	Prompt string `json:"prompt"`
}

func main() {
	ctx := context.Background()

	cfg, err := setup.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	tracerProvider, meterProvider, _, err := dishmatch.InitOtel(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %s", err)
	}

	// Built once per execution environment and reused by warm invocations.
	svc, err := setup.NewService(ctx, cfg, http.DefaultClient, dishmatch.NewStdoutRunLogger())
	if err != nil {
		log.Fatalf("Failed to create service: %s", err)
	}

	fn := func(ctx context.Context, params Params) (recommend.Result, error) {
		// The environment may be frozen after returning, so export now.
		defer func() {
			if err := tracerProvider.ForceFlush(ctx); err != nil {
				slog.Error("SETUP: Failed to flush traces", "error", err)
			}
			if err := meterProvider.ForceFlush(ctx); err != nil {
				slog.Error("SETUP: Failed to flush metrics", "error", err)
			}
		}()

		return svc.Handle(ctx, params.Prompt)
	}

	lambda.Start(fn)
}
