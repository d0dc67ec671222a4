// Package setup builds the collaborators shared by the recommender entry
// points from environment configuration.
package setup

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"

	"dishmatch"
	"dishmatch/catalog"
	"dishmatch/oracle/bedrock"
	"dishmatch/oracle/breaker"
	"dishmatch/oracle/mock"
	"dishmatch/oracle/ollama"
	"dishmatch/recommend"
)

// Config gathers every environment-driven setting.
type Config struct {
	Model   dishmatch.ModelConfig
	Engine  dishmatch.EngineConfig
	Catalog dishmatch.CatalogConfig
	Breaker dishmatch.BreakerConfig
	Slack   dishmatch.SlackConfig
}

func LoadConfig() (Config, error) {
	var cfg Config
	for _, target := range []any{&cfg.Model, &cfg.Engine, &cfg.Catalog, &cfg.Breaker, &cfg.Slack} {
		if err := envdecode.Decode(target); err != nil {
			return Config{}, fmt.Errorf("failed to decode config: %w", err)
		}
	}
	return cfg, nil
}

// awsConfigLoader is swapped in tests to avoid touching real credentials.
var awsConfigLoader = func(ctx context.Context) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
}

// NewCatalogSource returns the catalog source named by CATALOG_SOURCE and a
// cleanup function for any connection it opened.
func NewCatalogSource(ctx context.Context, cfg dishmatch.CatalogConfig) (catalog.Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Source {
	case "file":
		slog.Info("SETUP: Using file catalog", "path", cfg.Path)
		return catalog.NewFileSource(cfg.Path), noop, nil

	case "s3":
		if cfg.S3Bucket == "" || cfg.S3Key == "" {
			return nil, noop, fmt.Errorf("missing S3 config: CATALOG_S3_BUCKET and CATALOG_S3_KEY must be set")
		}
		awsCfg, err := awsConfigLoader(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to load AWS config: %w", err)
		}
		slog.Info("SETUP: Using S3 catalog", "bucket", cfg.S3Bucket, "key", cfg.S3Key)
		return catalog.NewS3Source(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Key), noop, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		slog.Info("SETUP: Using Redis catalog", "addr", cfg.RedisAddr, "key", cfg.RedisKey)
		return catalog.NewRedisSource(rdb, cfg.RedisKey), rdb.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// NewOracle returns the oracle named by ORACLE_PROVIDER, wrapped in a
// circuit breaker when enabled. Provider "none" yields a nil oracle, which
// the engine reports as unconfigured.
func NewOracle(ctx context.Context, cfg Config, httpClient dishmatch.HTTPClient) (dishmatch.Oracle, error) {
	var o dishmatch.Oracle

	switch cfg.Engine.OracleProvider {
	case "bedrock":
		awsCfg, err := awsConfigLoader(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		o = bedrock.NewClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.Options{
			ModelID:     cfg.Model.ModelID,
			MaxTokens:   cfg.Model.MaxTokens,
			Temperature: cfg.Model.Temperature,
			TopP:        cfg.Model.TopP,
		})

	case "ollama":
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		c, err := ollama.NewClient(ollama.ClientOpts{
			BaseEndpoint: cfg.Engine.BaseOllamaEndpoint,
			ModelID:      cfg.Model.ModelID,
			HTTPClient:   httpClient,
		})
		if err != nil {
			return nil, err
		}
		o = c

	case "mock":
		o = mock.NewOracle(cfg.Engine.MaxResults)

	case "none":
		slog.Warn("SETUP: No oracle configured")
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Engine.OracleProvider)
	}

	if cfg.Breaker.Enabled {
		o = breaker.New(o, breaker.FromConfig(cfg.Engine.OracleProvider, cfg.Breaker))
	}
	return o, nil
}

// NewEngine assembles the recommendation engine.
func NewEngine(cfg Config, src catalog.Source, o dishmatch.Oracle, logger dishmatch.RunLogger) (*recommend.Engine, error) {
	vocab := recommend.DefaultVocabulary()
	if cfg.Engine.VocabularyPath != "" {
		v, err := recommend.LoadVocabulary(cfg.Engine.VocabularyPath)
		if err != nil {
			return nil, err
		}
		vocab = v
	}

	limits := recommend.DefaultLimits()
	limits.MaxResults = cfg.Engine.MaxResults

	return recommend.NewEngine(src, o, recommend.Options{
		Vocabulary:    vocab,
		Limits:        limits,
		OracleTimeout: cfg.Engine.OracleTimeout,
		RunLogger:     logger,
	})
}
