package service

import (
	"context"
	"errors"
	"fmt"

	"kql-assistant-backend/config"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// QueryGenerator turns a built prompt into query text. The returned text is
// not parsed or validated.
type QueryGenerator interface {
	GenerateQuery(ctx context.Context, prompt string) (string, error)
}

type openAIQueryGenerator struct {
	client       *openai.Client
	engine       string
	temperature  float32
	systemPrompt string
}

func NewOpenAIQueryGenerator(cfg *config.Config) (QueryGenerator, error) {
	if cfg.OpenAI.Engine == "" {
		return nil, errors.New("completion engine (OPENAI_API_ENGINE) is not configured")
	}

	var clientCfg openai.ClientConfig
	switch cfg.OpenAI.APIType {
	case "", "azure":
		clientCfg = openai.DefaultAzureConfig(cfg.OpenAI.APIKey, cfg.OpenAI.Endpoint)
		if cfg.OpenAI.APIVersion != "" {
			clientCfg.APIVersion = cfg.OpenAI.APIVersion
		}
		// Deployment names are used as configured.
		clientCfg.AzureModelMapperFunc = func(model string) string { return model }
	case "openai":
		clientCfg = openai.DefaultConfig(cfg.OpenAI.APIKey)
		if cfg.OpenAI.Endpoint != "" {
			clientCfg.BaseURL = cfg.OpenAI.Endpoint
		}
	default:
		return nil, fmt.Errorf("unsupported OPENAI_API_TYPE %q", cfg.OpenAI.APIType)
	}

	log.Info().
		Str("api_type", cfg.OpenAI.APIType).
		Str("engine", cfg.OpenAI.Engine).
		Msg("Completion client initialized")

	return &openAIQueryGenerator{
		client:       openai.NewClientWithConfig(clientCfg),
		engine:       cfg.OpenAI.Engine,
		temperature:  cfg.OpenAI.Temperature,
		systemPrompt: SystemInstruction,
	}, nil
}

func (g *openAIQueryGenerator) GenerateQuery(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	req := openai.ChatCompletionRequest{
		Model:       g.engine,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("engine", g.engine).Msg("Chat completion request failed")
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		log.Error().Str("engine", g.engine).Msg("Chat completion response has no choices")
		return "", ErrNoCompletion
	}

	content := resp.Choices[0].Message.Content
	log.Debug().Str("generated_query", content).Msg("Received generated query")
	return content, nil
}
