package recommend

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyPrompt is returned for a missing or blank request.
	ErrEmptyPrompt = errors.New("prompt is required")
	// ErrPromptTooLong is returned when the request exceeds MaxPromptLength.
	ErrPromptTooLong = errors.New("prompt is too long")
	// ErrOracleUnconfigured is returned when the engine has no oracle at all.
	// It is distinct from an oracle that fails at runtime.
	ErrOracleUnconfigured = errors.New("recommendation oracle is not configured")
	// ErrEmptyCatalog is returned when the catalog holds no items.
	ErrEmptyCatalog = errors.New("catalog is empty")
)

const MaxPromptLength = 2000

type Status string

const (
	StatusOK      Status = "ok"
	StatusNoMatch Status = "no_match"
)

// Strategy names the fallback step that produced a result.
type Strategy string

const (
	StrategyValidated         Strategy = "validated"
	StrategyUnvalidated       Strategy = "unvalidated"
	StrategyFilteredTop       Strategy = "filtered_top"
	StrategyOracleUnavailable Strategy = "oracle_unavailable"
	StrategyNone              Strategy = "none"
)

// Result is the outcome of one recommendation request.
type Result struct {
	RequestID   string           `json:"requestId"`
	Status      Status           `json:"status"`
	Strategy    Strategy         `json:"strategy"`
	Items       []Recommendation `json:"items"`
	Message     string           `json:"message"`
	Constraints Constraints      `json:"constraints"`
}

func (r Result) OK() bool {
	return r.Status == StatusOK
}

const (
	msgValidated         = "Found %d recommendations for your request."
	msgUnvalidated       = "Found %d suggestions, but they may not meet every constraint in your request."
	msgFilteredTop       = "Here are the top rated items matching your request."
	msgOracleUnavailable = "Recommendations are temporarily unavailable, so here are our top rated items instead."
	msgNoMatch           = "No items match your request. Try relaxing some of your constraints."
	msgNoMatchFor        = "No items match %s. Try relaxing some of your constraints."

	reasonFilteredTop       = "Top rated match for your request."
	reasonOracleUnavailable = "One of our top rated items. Personalized recommendations are unavailable right now."
)

func noMatchMessage(c Constraints) string {
	if s := c.Summary(); s != "" {
		return fmt.Sprintf(msgNoMatchFor, s)
	}
	return msgNoMatch
}

type request struct {
	Prompt string `validate:"required,max=2000"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validatePrompt trims the prompt and rejects blank or oversized input.
func validatePrompt(prompt string) (string, error) {
	req := request{Prompt: strings.TrimSpace(prompt)}
	if err := structValidator().Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
			return "", fmt.Errorf("%w: at most %d characters", ErrPromptTooLong, MaxPromptLength)
		}
		return "", ErrEmptyPrompt
	}
	return req.Prompt, nil
}
