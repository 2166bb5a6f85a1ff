package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/kavyanshpal/kpchat/internal/config"
)

// ArkCompleter runs completions through an eino chain over a Volcengine Ark
// chat model. The Ark model id is fixed at construction; the per-request
// model selector only applies to the Gemini provider.
type ArkCompleter struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewArkCompleter builds the chain the same way the chat template composes:
// system instruction, history placeholder, then the new user text.
func NewArkCompleter(ctx context.Context, cfg config.AIConfig) (*ArkCompleter, error) {
	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:   cfg.ArkBaseURL,
		Region:    cfg.ArkRegion,
		APIKey:    cfg.ArkAPIKey,
		AccessKey: cfg.ArkAccessKey,
		SecretKey: cfg.ArkSecretKey,
		Model:     cfg.ArkModel,
	})
	if err != nil {
		return nil, fmt.Errorf("create ark chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile chat chain: %w", err)
	}

	return &ArkCompleter{chain: runnable}, nil
}

// Complete invokes the chain and returns the reply content.
func (a *ArkCompleter) Complete(ctx context.Context, req Request) (string, error) {
	history := make([]*schema.Message, 0, len(req.History))
	for _, m := range req.History {
		switch m.Role {
		case "user":
			history = append(history, schema.UserMessage(m.Text))
		case "model":
			history = append(history, schema.AssistantMessage(m.Text, nil))
		}
	}

	response, err := a.chain.Invoke(ctx, map[string]any{
		"system":  req.System,
		"history": history,
		"query":   req.UserText,
	})
	if err != nil {
		return "", fmt.Errorf("run ai chain: %w", err)
	}
	return response.Content, nil
}
