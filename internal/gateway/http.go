package gateway

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

	"pecunia-backend/internal/models"

	"go.uber.org/zap"
)

// Endpoints maps each category to its path on the analysis backend.
var Endpoints = map[models.TaskCategory]string{
	models.CategoryComprehensiveAnalysis: "/api/ai/comprehensive-analysis",
	models.CategoryBudgetOptimization:    "/api/ai/smart-budget",
	models.CategoryInvestmentStrategy:    "/api/ai/investment-strategy",
	models.CategoryCompetitiveInsights:   "/api/ai/competitive-insights",
	models.CategoryTravelPlanning:        "/api/ai/travel-plan",
	models.CategoryGoalStrategy:          "/api/ai/goal-strategy",
	models.CategoryGeneralChat:           "/api/ai/chat",
}

// SpendingAnalysisPath is the backend path for transaction pattern analysis.
const SpendingAnalysisPath = "/api/ai/spending-analysis"

const maxErrorBody = 4 << 10

// Ensure HTTPGateway implements the Gateway interface.
var _ Gateway = (*HTTPGateway)(nil)

// HTTPGateway talks JSON over HTTP POST to the analysis backend.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPGateway creates a gateway for the backend at baseURL. The timeout is
// the transport deadline for a whole call; there are no retries.
func NewHTTPGateway(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("gateway"),
	}
}

func (g *HTTPGateway) ComprehensiveAnalysis(ctx context.Context, profile models.Profile) (*models.ComprehensiveResult, error) {
	var out models.ComprehensiveResult
	if err := g.post(ctx, models.CategoryComprehensiveAnalysis, profile, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) BudgetOptimization(ctx context.Context, profile models.Profile) (*models.BudgetResult, error) {
	var out models.BudgetResult
	if err := g.post(ctx, models.CategoryBudgetOptimization, profile, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) InvestmentStrategy(ctx context.Context, profile models.Profile) (*models.InvestmentResult, error) {
	var out models.InvestmentResult
	if err := g.post(ctx, models.CategoryInvestmentStrategy, profile, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) CompetitiveInsights(ctx context.Context, profile models.Profile) (*models.CompetitiveResult, error) {
	var out models.CompetitiveResult
	if err := g.post(ctx, models.CategoryCompetitiveInsights, profile, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) TravelPlan(ctx context.Context, payload models.TravelPayload) (*models.TravelResult, error) {
	var out models.TravelResult
	if err := g.post(ctx, models.CategoryTravelPlanning, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) GoalStrategy(ctx context.Context, payload models.GoalPayload) (*models.GoalResult, error) {
	var out models.GoalResult
	if err := g.post(ctx, models.CategoryGoalStrategy, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) Chat(ctx context.Context, payload models.ChatPayload) (*models.ChatResult, error) {
	var out models.ChatResult
	if err := g.post(ctx, models.CategoryGeneralChat, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) SpendingAnalysis(ctx context.Context, req models.SpendingAnalysisRequest) (*models.SpendingAnalysisResult, error) {
	var out models.SpendingAnalysisResult
	if err := g.send(ctx, "", SpendingAnalysisPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// post sends body to the category endpoint and decodes the response into out.
func (g *HTTPGateway) post(ctx context.Context, category models.TaskCategory, body any, out any) error {
	path, ok := Endpoints[category]
	if !ok {
		return &Error{Category: category, Cause: fmt.Errorf("no endpoint for category %q", category)}
	}
	return g.send(ctx, category, path, body, out)
}

func (g *HTTPGateway) send(ctx context.Context, category models.TaskCategory, path string, body any, out any) error {
	fail := func(status int, cause error) error {
		return &Error{Category: category, Endpoint: path, StatusCode: status, Cause: cause}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fail(0, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fail(0, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	g.logger.Debug("analysis call finished",
		zap.String("endpoint", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fail(resp.StatusCode, fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(snippet))))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fail(resp.StatusCode, errors.New("empty response body"))
	}
	// null, arrays and scalars would decode as a silent no-op.
	if trimmed[0] != '{' {
		return fail(resp.StatusCode, fmt.Errorf("malformed response body: expected a JSON object, got %.32q", trimmed))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("malformed response body: %w", err))
	}
	return nil
}
