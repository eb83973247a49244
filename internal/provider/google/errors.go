package google

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	ai "github.com/spetersoncode/assistant"
	"google.golang.org/genai"
)

// BlockedError is returned when Gemini refuses a prompt on safety grounds.
// The prompt has to change before a retry can succeed, so it is a user input
// error.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("request blocked: %s", e.Reason)
}

// Category reports the block as a user input problem.
func (e *BlockedError) Category() ai.ErrorCategory { return ai.ErrorUserInput }

// Retryable always returns false.
func (e *BlockedError) Retryable() bool { return false }

// StatusCode returns 400; Gemini answers blocked prompts with a normal 200
// carrying a block reason, which maps to a bad request on our side.
func (e *BlockedError) StatusCode() int { return http.StatusBadRequest }

// RetryAfter always returns 0.
func (e *BlockedError) RetryAfter() time.Duration { return 0 }

var _ ai.CategorizedError = (*BlockedError)(nil)

// wrapError maps genai errors onto the assistant error categories.
// genai.APIError carries no response headers, so no Retry-After is set.
// Errors that are not API errors pass through for the retry heuristics.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var ce ai.CategorizedError
	if errors.As(err, &ce) {
		return err
	}
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	msg := fmt.Sprintf("gemini: %s", apiErr.Message)
	if apiErr.Message == "" {
		msg = "gemini: " + http.StatusText(apiErr.Code)
	}
	switch categorize(apiErr.Code) {
	case ai.ErrorTransient:
		return ai.NewTransientError(msg, apiErr.Code, err)
	case ai.ErrorUserInput:
		return ai.NewUserInputError(msg, apiErr.Code, err)
	default:
		return ai.NewPermanentError(msg, apiErr.Code, err)
	}
}

func categorize(code int) ai.ErrorCategory {
	switch {
	case code == http.StatusTooManyRequests, code >= 500:
		return ai.ErrorTransient
	case code == http.StatusBadRequest, code == http.StatusNotFound, code == http.StatusUnprocessableEntity:
		return ai.ErrorUserInput
	default:
		return ai.ErrorPermanent
	}
}
