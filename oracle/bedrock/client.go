package bedrock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dishmatch"
)

const (
	// defaultModelID is the default model ID for Bedrock Claude.
	// It's an inference profile ID or ARN, not the foundation model's ID.
	// See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	// Six recommendations with reasons fit comfortably in 2k tokens.
	defaultMaxTokens = 2048

	// Low temperature keeps the JSON output deterministic and consistent.
	defaultTemperature = 0.2

	// Low top_p keeps the selection focused on the listed candidates.
	defaultTopP = 0.9
)

var (
	ErrMaxTokens = errors.New("model hit MaxTokens limit")
	ErrBlocked   = errors.New("model response blocked by Bedrock safety filters")
)

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type Options struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// Client is an oracle backed by the Bedrock Converse API.
type Client struct {
	brc    bedrockRuntimeClient
	opts   Options
	tracer trace.Tracer
}

func NewClient(brc bedrockRuntimeClient, opts Options) *Client {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	return &Client{
		brc:    brc,
		opts:   opts,
		tracer: otel.Tracer(dishmatch.TracerNameBedrock),
	}
}

// ModelID reports the model the client invokes.
func (c *Client) ModelID() string {
	return c.opts.ModelID
}

// Generate sends the instruction as a single user turn and returns the
// assistant text.
func (c *Client) Generate(ctx context.Context, instruction string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "bedrock.Converse", trace.WithAttributes(
		attribute.String("bedrock.model_id", c.opts.ModelID),
	))
	defer span.End()

	slog.Info("ORACLE: Invoking Bedrock", "model", c.opts.ModelID, "instruction_len", len(instruction))

	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.opts.ModelID),
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: instruction},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(c.opts.MaxTokens),
			Temperature: aws.Float32(c.opts.Temperature),
			TopP:        aws.Float32(c.opts.TopP),
		},
	}
	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("ORACLE: Bedrock invoke failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "converse failed")
		return "", fmt.Errorf("bedrock converse: %w", err)
	}

	attrs := []any{"stop_reason", out.StopReason}
	if out.Metrics != nil {
		attrs = append(attrs, "latency_ms", aws.ToInt64(out.Metrics.LatencyMs))
	}
	if out.Usage != nil {
		attrs = append(attrs,
			"input_tokens", aws.ToInt32(out.Usage.InputTokens),
			"output_tokens", aws.ToInt32(out.Usage.OutputTokens),
		)
		span.SetAttributes(
			attribute.Int("bedrock.input_tokens", int(aws.ToInt32(out.Usage.InputTokens))),
			attribute.Int("bedrock.output_tokens", int(aws.ToInt32(out.Usage.OutputTokens))),
		)
	}
	slog.Info("ORACLE: Bedrock invoke succeeded", attrs...)

	switch out.StopReason {
	case "max_tokens":
		slog.Warn("ORACLE: Model hit MaxTokens limit; consider increasing MAX_TOKENS")
		span.SetStatus(codes.Error, ErrMaxTokens.Error())
		return "", ErrMaxTokens

	case "guardrail_intervened", "content_filtered":
		slog.Warn("ORACLE: Model response blocked by Bedrock safety filters")
		span.SetStatus(codes.Error, ErrBlocked.Error())
		return "", ErrBlocked
	}

	return textFromOutput(out), nil
}

// textFromOutput returns the assistant text:
// 1) If any text block looks like a JSON array, return the last such block.
// 2) Else, if there's only one text block, return it.
// 3) Else, join all text blocks with '\n'.
func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil || len(msg.Value.Content) == 0 {
		return ""
	}

	texts := make([]string, 0, len(msg.Value.Content))
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t != nil && t.Value != "" {
			texts = append(texts, t.Value)
		}
	}
	if len(texts) == 0 {
		return ""
	}

	for i := len(texts) - 1; i >= 0; i-- {
		s := strings.TrimSpace(texts[i])
		if len(s) > 1 && s[0] == '[' && s[len(s)-1] == ']' {
			return s
		}
	}

	if len(texts) == 1 {
		return texts[0]
	}
	return strings.Join(texts, "\n")
}
