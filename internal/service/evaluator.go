package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/learnlytics/learnlytics-backend/internal/config"
	"github.com/learnlytics/learnlytics-backend/internal/model"
	"github.com/rs/zerolog"
)

// Verdict is the code evaluator's judgement of one coding answer.
type Verdict struct {
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`
}

// CodeEvaluator produces a correctness verdict for submitted code. The engine
// treats it as a black box; how code actually runs is not this service's
// concern.
type CodeEvaluator interface {
	Evaluate(ctx context.Context, question model.Question, code string) (*Verdict, error)
}

// HTTPCodeEvaluator calls an external evaluation service over HTTP. The
// client timeout bounds how long a hung evaluator can block a submission.
type HTTPCodeEvaluator struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

// NewHTTPCodeEvaluator creates an evaluator client from configuration.
func NewHTTPCodeEvaluator(cfg *config.Config, log zerolog.Logger) *HTTPCodeEvaluator {
	return &HTTPCodeEvaluator{
		url:    cfg.EvaluatorURL,
		client: &http.Client{Timeout: cfg.EvaluatorTimeout},
		log:    log.With().Str("component", "code_evaluator").Logger(),
	}
}

type evaluateRequest struct {
	Language       string   `json:"language"`
	Prompt         string   `json:"prompt"`
	StarterCode    string   `json:"starter_code,omitempty"`
	TestCases      []string `json:"test_cases,omitempty"`
	ExpectedOutput string   `json:"expected_output,omitempty"`
	Code           string   `json:"code"`
}

// Evaluate posts the question and code to the evaluation service.
func (e *HTTPCodeEvaluator) Evaluate(ctx context.Context, question model.Question, code string) (*Verdict, error) {
	payload, err := json.Marshal(evaluateRequest{
		Language:       question.Language,
		Prompt:         question.Prompt,
		StarterCode:    question.StarterCode,
		TestCases:      question.TestCases,
		ExpectedOutput: question.ExpectedOutput,
		Code:           code,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call evaluator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("evaluator returned status %d", resp.StatusCode)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}

	e.log.Debug().
		Str("question_id", question.ID.String()).
		Bool("is_correct", verdict.IsCorrect).
		Msg("Code evaluated")

	return &verdict, nil
}
