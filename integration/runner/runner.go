package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/companion-engine/pkg/chat"
	"github.com/jwebster45206/companion-engine/pkg/session"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration suites against a running API.
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a runner for the API at baseURL.
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 120 * time.Second},
		Timeout:           60 * time.Second,
		ErrorHandlingMode: ErrorHandlingContinue,
		Logger:            func(format string, args ...interface{}) {},
	}
}

// LoadTestSuite loads one case file.
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}
	return suite, nil
}

// sessionEnvelope mirrors the /v1/sessions response body.
type sessionEnvelope struct {
	Session *session.Session `json:"session,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// RunSuite starts a fresh session in a throwaway slot, plays the steps
// in order and checks expectations after each one. The slot is deleted
// afterward regardless of outcome.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) SuiteResult {
	start := time.Now()
	result := SuiteResult{
		Job:  TestJob{Name: suite.Name, Suite: suite},
		Slot: "itest-" + uuid.New().String(),
	}

	if err := r.createSession(ctx, result.Slot, suite); err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		result.Duration = time.Since(start)
		return result
	}
	defer r.deleteSession(result.Slot)

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, result.Slot, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] FAILED %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i+1, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
		}
	}

	result.Duration = time.Since(start)
	return result
}

func (r *Runner) runStep(ctx context.Context, slot string, step TestStep) StepResult {
	start := time.Now()
	result := StepResult{Name: step.Name}

	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	turn, err := r.sendTurn(stepCtx, slot, step.Message)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	if step.Expect.NotVoided && turn.Voided {
		result.Error = fmt.Errorf("turn was voided: %q", turn.Narrative)
		result.Duration = time.Since(start)
		return result
	}

	s, err := r.fetchSession(stepCtx, slot)
	if err != nil {
		result.Error = fmt.Errorf("failed to fetch session after step: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Error = checkExpectation(step.Expect, s)
	result.Duration = time.Since(start)
	return result
}

func checkExpectation(expect Expectation, s *session.Session) error {
	if expect.Location != "" && !strings.EqualFold(s.Game.Location, expect.Location) {
		return fmt.Errorf("expected location %q, got %q", expect.Location, s.Game.Location)
	}
	if expect.MinTurnCount > 0 && s.Meta.TurnCount < expect.MinTurnCount {
		return fmt.Errorf("expected turn count >= %d, got %d", expect.MinTurnCount, s.Meta.TurnCount)
	}
	if expect.MinGold > 0 && s.Game.Gold < expect.MinGold {
		return fmt.Errorf("expected gold >= %d, got %d", expect.MinGold, s.Game.Gold)
	}
	for _, item := range expect.HasItems {
		if !s.HasItem(item) {
			return fmt.Errorf("expected inventory to contain %q, got %v", item, s.Game.Inventory)
		}
	}
	return nil
}

func (r *Runner) createSession(ctx context.Context, slot string, suite TestSuite) error {
	body := map[string]string{
		"slot":     slot,
		"world_id": suite.WorldID,
	}
	if suite.Companion != "" {
		body["companion_name"] = suite.Companion
	}

	var envelope sessionEnvelope
	if err := r.post(ctx, "/v1/sessions", body, &envelope); err != nil {
		return err
	}
	if envelope.Session == nil {
		return fmt.Errorf("no session in create response (error: %q)", envelope.Error)
	}
	return nil
}

func (r *Runner) sendTurn(ctx context.Context, slot, message string) (*chat.TurnResponse, error) {
	body := chat.TurnRequest{Slot: slot, Message: message}
	var turn chat.TurnResponse
	if err := r.post(ctx, "/v1/turn", body, &turn); err != nil {
		return nil, err
	}
	if turn.Error != "" {
		return nil, fmt.Errorf("turn error: %s", turn.Error)
	}
	return &turn, nil
}

func (r *Runner) fetchSession(ctx context.Context, slot string) (*session.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/v1/sessions?slot="+slot, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope sessionEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session fetch returned %d: %s", resp.StatusCode, envelope.Error)
	}
	if envelope.Session == nil {
		return nil, fmt.Errorf("no session in response")
	}
	return envelope.Session, nil
}

func (r *Runner) deleteSession(slot string) {
	req, err := http.NewRequest(http.MethodDelete, r.BaseURL+"/v1/sessions?slot="+slot, nil)
	if err != nil {
		return
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		r.Logger("    cleanup: failed to delete slot %s: %v", slot, err)
		return
	}
	resp.Body.Close()
}

func (r *Runner) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, string(raw))
	}
	return nil
}
