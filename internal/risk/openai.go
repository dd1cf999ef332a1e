package risk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"travel_risk/internal/apperr"
	"travel_risk/internal/config"
	"travel_risk/internal/domain"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// Instructions sent as the system message of every analysis
const Instructions = `You are an enterprise business travel risk, compliance, and duty-of-care expert.

Analyze the provided business trip and return ONLY valid JSON.

The response MUST strictly follow this schema:

{
  "overall_risk_score": number (0-100),
  "risk_level": "Low" | "Medium" | "High",
  "political_and_war_risk": {"risk_level": "Low" | "Medium" | "High", "notes": string},
  "labour_law_and_immigration": {"risk_level": "Low" | "Medium" | "High", "notes": string},
  "health_and_safety": {"risk_level": "Low" | "Medium" | "High", "notes": string},
  "key_risk_factors": string,
  "recommendations": string
}

Do not include any explanation outside the JSON.`

// chatClient is the part of *openai.Client the provider uses
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider assesses trips with a chat completion model on OpenAI or Azure OpenAI
type OpenAIProvider struct {
	client  chatClient
	model   string
	timeout time.Duration
}

// NewOpenAIProvider builds the provider selected by cfg.RiskProvider
func NewOpenAIProvider(cfg *config.Config) (*OpenAIProvider, error) {
	var (
		clientCfg openai.ClientConfig
		model     string
	)
	switch cfg.RiskProvider {
	case config.ProviderAzure:
		if cfg.AzureOpenAIEndpoint == "" || cfg.AzureOpenAIAPIKey == "" || cfg.AzureOpenAIDeployment == "" {
			return nil, errors.New("AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY and AZURE_OPENAI_DEPLOYMENT are required")
		}
		clientCfg = openai.DefaultAzureConfig(cfg.AzureOpenAIAPIKey, cfg.AzureOpenAIEndpoint)
		clientCfg.APIVersion = cfg.AzureOpenAIAPIVersion
		deployment := cfg.AzureOpenAIDeployment
		clientCfg.AzureModelMapperFunc = func(string) string { return deployment }
		model = deployment
	default:
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required")
		}
		clientCfg = openai.DefaultConfig(cfg.OpenAIAPIKey)
		if cfg.OpenAIBaseURL != "" {
			clientCfg.BaseURL = cfg.OpenAIBaseURL
		}
		model = cfg.OpenAIModel
	}
	logrus.WithFields(logrus.Fields{"provider": cfg.RiskProvider, "model": model}).Info("Initializing risk provider")
	return newOpenAIProvider(openai.NewClientWithConfig(clientCfg), model, cfg.RiskTimeout), nil
}

func newOpenAIProvider(client chatClient, model string, timeout time.Duration) *OpenAIProvider {
	return &OpenAIProvider{client: client, model: model, timeout: timeout}
}

// Assess implements Provider
func (p *OpenAIProvider) Assess(ctx context.Context, req Request) (*domain.RiskReport, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, apperr.Upstream(fmt.Errorf("encode request: %w", err))
	}
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: Instructions},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, apperr.Upstream(fmt.Errorf("chat completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return nil, apperr.Upstream(errors.New("provider returned no choices"))
	}
	report, err := Normalize(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return report, nil
}
