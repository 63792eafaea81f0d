package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go_procure_backend/config"
	"go_procure_backend/models"
	"go_procure_backend/pkg/errs"
	"go_procure_backend/pkg/logging"
	"go_procure_backend/platform/logbus"
)

// Completer is the single capability the pipeline needs from the AI
// side: prompt in, text out. The gateway implements it over HTTP;
// tests implement it with canned responses.
type Completer interface {
	Complete(ctx context.Context, sessionID, prompt, purpose string) (string, error)
}

const maxAttempts = 3

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// AIGateway is the resilient transport to the completion service.
// Stateless except for retry bookkeeping inside a single call.
type AIGateway struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
	bus    *logbus.Bus

	// sleep is swapped out in tests so backoff does not wall-clock wait
	sleep func(ctx context.Context, d time.Duration) error
}

func NewAIGateway(cfg *config.Config, bus *logbus.Bus) *AIGateway {
	return &AIGateway{
		apiURL: strings.TrimRight(cfg.AIApiURL, "/"),
		apiKey: cfg.AIApiKey,
		model:  cfg.AIModel,
		client: &http.Client{Timeout: cfg.AITimeout},
		bus:    bus,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Complete runs one prompt with up to 3 attempts. Waits of 2s and 4s
// precede attempts 2 and 3. Timeouts, connection failures, 429 and 5xx
// are retried; any other 4xx is raised immediately. Every attempt
// boundary publishes a log event to the session, when one is set.
func (g *AIGateway) Complete(ctx context.Context, sessionID, prompt, purpose string) (string, error) {
	g.log(sessionID, models.LogLevelInfo, fmt.Sprintf("[AI] calling API - %s", purpose))
	g.log(sessionID, models.LogLevelDebug, fmt.Sprintf("[AI] prompt length: %d chars", len([]rune(prompt))))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			wait := time.Duration(1<<(attempt-1)) * time.Second
			g.log(sessionID, models.LogLevelWarn,
				fmt.Sprintf("[AI] attempt %d failed, retrying in %s: %v", attempt-1, wait, lastErr))
			if err := g.sleep(ctx, wait); err != nil {
				return "", err
			}
		}

		start := time.Now()
		text, usage, err := g.doRequest(ctx, prompt)
		if err == nil {
			g.log(sessionID, models.LogLevelDebug,
				fmt.Sprintf("[AI] token usage: prompt=%d, completion=%d", usage.Usage.PromptTokens, usage.Usage.CompletionTokens))
			g.log(sessionID, models.LogLevelInfo,
				fmt.Sprintf("[AI] call succeeded - %s (%.2fs)", purpose, time.Since(start).Seconds()))
			return text, nil
		}

		lastErr = err
		if !errs.IsRetryable(err) {
			g.log(sessionID, models.LogLevelError, fmt.Sprintf("[AI] call failed - %s: %v", purpose, err))
			return "", err
		}
	}

	g.log(sessionID, models.LogLevelError,
		fmt.Sprintf("[AI] giving up after %d attempts - %s: %v", maxAttempts, purpose, lastErr))
	return "", lastErr
}

func (g *AIGateway) doRequest(ctx context.Context, prompt string) (string, chatResponse, error) {
	var zero chatResponse

	reqBody := chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.1,
		MaxTokens:   4096,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", zero, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.apiURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", zero, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		// timeout or connection failure
		return "", zero, &errs.AITransportError{Err: err}
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			logging.Logger.Warn("error closing response body", "error", cerr)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		body := strings.TrimSpace(string(raw))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", zero, &errs.AITransportError{
				StatusCode: resp.StatusCode,
				Err:        errors.New(truncateForReason(body, 200)),
			}
		}
		return "", zero, &errs.AIClientError{
			StatusCode: resp.StatusCode,
			Body:       truncateForReason(body, 200),
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", zero, &errs.DecodeError{Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", zero, &errs.DecodeError{Err: errors.New("no choices in response")}
	}
	return parsed.Choices[0].Message.Content, parsed, nil
}

// ExtractRequirements asks the model to pull structured items out of
// free text. A response that cannot be decoded yields an empty list,
// not an error; transport failures still propagate.
func (g *AIGateway) ExtractRequirements(ctx context.Context, sessionID, content string) ([]models.RequirementItem, error) {
	g.log(sessionID, models.LogLevelInfo, "=== extracting procurement requirements ===")

	response, err := g.Complete(ctx, sessionID, buildExtractPrompt(content), "requirement extraction")
	if err != nil {
		return nil, err
	}

	var items []models.RequirementItem
	if err := decodeModelJSON(response, &items, jsonArrayPattern); err != nil {
		g.log(sessionID, models.LogLevelError, "requirement extraction returned undecodable response")
		logging.Logger.Warn("extraction decode failed", "error", err)
		return []models.RequirementItem{}, nil
	}

	// empty-name items never reach later stages
	kept := items[:0]
	for _, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name != "" {
			kept = append(kept, item)
		}
	}
	g.log(sessionID, models.LogLevelInfo, fmt.Sprintf("extracted %d requirement(s)", len(kept)))
	return kept, nil
}

func (g *AIGateway) log(sessionID, level, message string) {
	if g.bus != nil {
		g.bus.Log(sessionID, level, message)
	}
}
