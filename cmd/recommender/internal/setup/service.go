package setup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"dishmatch"
	"dishmatch/recommend"
	"dishmatch/slack"
)

// Service holds the collaborators of a running process. It is built once and
// shared by every request, so breaker counts and connections persist across
// invocations.
type Service struct {
	engine       *recommend.Engine
	slack        dishmatch.SlackClient
	slackChannel string
	closeSource  func() error
}

// NewService wires the catalog source, oracle and engine described by cfg.
// The HTTP client is shared by the Ollama oracle and the Slack notifier.
func NewService(ctx context.Context, cfg Config, httpClient dishmatch.HTTPClient, logger dishmatch.RunLogger) (*Service, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	src, closeSource, err := NewCatalogSource(ctx, cfg.Catalog)
	if err != nil {
		return nil, err
	}

	oracle, err := NewOracle(ctx, cfg, httpClient)
	if err != nil {
		return nil, errors.Join(err, closeSource())
	}

	engine, err := NewEngine(cfg, src, oracle, logger)
	if err != nil {
		return nil, errors.Join(err, closeSource())
	}

	s := &Service{
		engine:      engine,
		closeSource: closeSource,
	}
	if cfg.Slack.WebhookURL != "" {
		s.slack = slack.NewClient(cfg.Slack.WebhookURL, httpClient)
		s.slackChannel = cfg.Slack.Channel
	}
	return s, nil
}

// Handle runs one recommendation request and, when Slack is configured,
// posts the result. Slack failures are logged and do not fail the request.
func (s *Service) Handle(ctx context.Context, prompt string) (recommend.Result, error) {
	res, err := s.engine.Recommend(ctx, prompt)
	if err != nil {
		slog.Error("RESULT: Error handling request", "error", err)
		return recommend.Result{}, err
	}

	if s.slack != nil {
		if err := slack.PostResult(ctx, s.slack, s.slackChannel, prompt, res); err != nil {
			slog.Error("Failed to post result to Slack", "error", err)
		}
	}
	return res, nil
}

func (s *Service) Close() error {
	return s.closeSource()
}
