package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pecunia-backend/internal/formatter"
	"pecunia-backend/internal/models"

	"github.com/sashabaranov/go-openai"
)

const chatSystemPrompt = "You are Pecunia, a friendly personal finance assistant. " +
	"Answer briefly and concretely, using the user's financial snapshot when it helps."

// OpenAIChat answers general chat through an OpenAI-compatible API and
// delegates every other category to the analysis backend.
type OpenAIChat struct {
	Gateway
	client *openai.Client
	model  string
}

// Ensure OpenAIChat implements the Gateway interface.
var _ Gateway = (*OpenAIChat)(nil)

// NewOpenAIChat wraps backend so that Chat goes to the OpenAI API.
// An empty baseURL keeps the library default. timeout bounds a whole
// completion call, like the analysis backend transport.
func NewOpenAIChat(backend Gateway, apiKey, baseURL, model string, timeout time.Duration) *OpenAIChat {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIChat{
		Gateway: backend,
		client:  openai.NewClientWithConfig(config),
		model:   model,
	}
}

func (c *OpenAIChat) Chat(ctx context.Context, payload models.ChatPayload) (*models.ChatResult, error) {
	system := chatSystemPrompt + "\n\n" + profileSummary(payload.UserContext.Profile)
	if page := payload.UserContext.Page; page != "" {
		system += fmt.Sprintf(" The user is viewing the %s page.", page)
	}
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
	}
	for _, turn := range payload.UserContext.History {
		role := openai.ChatMessageRoleUser
		if turn.Origin == models.OriginAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Body})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: payload.Message})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		gwErr := &Error{Category: models.CategoryGeneralChat, Cause: fmt.Errorf("failed to create chat completion: %w", err)}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			gwErr.StatusCode = apiErr.HTTPStatusCode
		}
		return nil, gwErr
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Category: models.CategoryGeneralChat, Cause: errors.New("completion returned no choices")}
	}
	return &models.ChatResult{Response: resp.Choices[0].Message.Content}, nil
}

func profileSummary(p models.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Monthly income %s, expenses %s, budget %s. ",
		formatter.Money(p.MonthlyIncome), formatter.Money(p.MonthlyExpenses), formatter.Money(p.MonthlyBudget))
	fmt.Fprintf(&b, "Savings rate %s, net worth %s, emergency fund %s. ",
		formatter.PointsPercent(p.SavingsRate), formatter.Money(p.NetWorth()), formatter.Money(p.EmergencyFund))
	fmt.Fprintf(&b, "Age %d, risk tolerance %s, location %s.", p.Age, p.RiskTolerance, p.Location)
	return b.String()
}
