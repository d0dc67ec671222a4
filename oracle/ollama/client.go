package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dishmatch"
)

const systemPrompt = "You are a food recommendation assistant. Follow the instructions exactly and reply with JSON only."

type options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
}

// Client is an oracle backed by the Ollama chat API.
type Client struct {
	endpoint   string
	model      string
	httpClient dishmatch.HTTPClient
	options    options
	tracer     trace.Tracer
}

type ClientOpts struct {
	BaseEndpoint string
	ModelID      string
	HTTPClient   dishmatch.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if strings.TrimSpace(opts.BaseEndpoint) == "" {
		return nil, errors.New("ollama base endpoint is required")
	}
	if strings.TrimSpace(opts.ModelID) == "" {
		return nil, errors.New("ollama model is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Client{
		model:      opts.ModelID,
		httpClient: opts.HTTPClient,
		endpoint:   strings.TrimRight(opts.BaseEndpoint, "/") + "/api/chat",
		options: options{
			Temperature:   0.2,
			TopP:          0.9,
			RepeatPenalty: 1.05,
			NumCtx:        16384, // candidate lists of 50 items need a large context window
		},
		tracer: otel.Tracer(dishmatch.TracerNameOllama),
	}, nil
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  options       `json:"options,omitempty"`
}

type wireResponse struct {
	Message wireMessage `json:"message"`
	// other metadata omitted but available
}

// Generate posts the instruction to /api/chat and returns the model's
// message content verbatim.
func (c *Client) Generate(ctx context.Context, instruction string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "ollama.Chat", trace.WithAttributes(
		attribute.String("ollama.model", c.model),
	))
	defer span.End()

	slog.Info("ORACLE: Invoking Ollama", "model", c.model, "instruction_len", len(instruction))

	content, err := c.chat(ctx, instruction)
	if err != nil {
		slog.Error("ORACLE: Ollama invoke failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat failed")
		return "", err
	}
	span.SetAttributes(attribute.Int("ollama.response_len", len(content)))
	return content, nil
}

func (c *Client) chat(ctx context.Context, instruction string) (string, error) {
	reqBytes, err := json.Marshal(wireRequest{
		Model: c.model,
		Messages: []wireMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: instruction},
		},
		Stream:  false,
		Options: c.options,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama chat: %s: %s", resp.Status, string(body))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		slog.Warn("ORACLE: Ollama decode failed, returning raw body", "error", err)
		return string(body), nil
	}
	return wr.Message.Content, nil
}
