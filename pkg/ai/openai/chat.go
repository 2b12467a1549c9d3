package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/cristofima/maf-graphrag-series/pkg/ai"
	"github.com/cristofima/maf-graphrag-series/pkg/logger"

	"github.com/openai/openai-go/v3"
)

// GenerateChatWithTools sends a multi-turn conversation with tools that the
// model can call. Tool calls are executed and their results fed back until
// the model produces a final response without tool calls, or until the
// maximum number of rounds is reached.
//
// A failing tool handler does not abort the loop: its error text becomes the
// tool result so the model can recover.
func (c *ChatClient) GenerateChatWithTools(
	ctx context.Context,
	messages []ai.ChatMessage,
	tools []ai.Tool,
	opts ...ai.GenerateOption,
) (*ai.ChatResult, error) {
	options := ai.GenerateOptions{
		Model:         c.model,
		SystemPrompts: []string{},
		Temperature:   0.2,
		MaxRounds:     c.maxRounds,
	}
	for _, o := range opts {
		o(&options)
	}

	msgs := toParams(options.SystemPrompts, messages)
	openaiTools := toToolParams(tools)
	result := &ai.ChatResult{ToolsUsed: []string{}}

	for range options.MaxRounds {
		body := openai.ChatCompletionNewParams{
			Model:       openai.ChatModel(options.Model),
			Messages:    msgs,
			Temperature: openai.Float(options.Temperature),
		}
		if len(openaiTools) > 0 {
			body.Tools = openaiTools
		}

		start := time.Now()
		response, err := c.client.Chat.Completions.New(ctx, body)
		if err != nil {
			return nil, err
		}
		usage := ai.ModelMetrics{
			InputTokens:  int(response.Usage.PromptTokens),
			OutputTokens: int(response.Usage.CompletionTokens),
			TotalTokens:  int(response.Usage.TotalTokens),
			DurationMs:   time.Since(start).Milliseconds(),
		}
		c.modifyMetrics(usage)
		addUsage(&result.Usage, usage)

		if len(response.Choices) == 0 {
			return nil, fmt.Errorf("no choices in response from model")
		}
		message := response.Choices[0].Message
		if len(message.ToolCalls) == 0 {
			result.Content = message.Content
			return result, nil
		}

		msgs = append(msgs, message.ToParam())

		for _, tc := range message.ToolCalls {
			ftc := tc.AsFunction()
			result.ToolsUsed = append(result.ToolsUsed, ftc.Function.Name)

			tool, ok := ai.FindTool(tools, ftc.Function.Name)
			if !ok || tool.Handler == nil {
				return nil, fmt.Errorf("no handler found for tool: %s", ftc.Function.Name)
			}

			logger.Debug("[Tool] calling", "tool", ftc.Function.Name, "args", ftc.Function.Arguments)
			out, err := tool.Handler(ctx, ftc.Function.Arguments)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logger.Warn("[Tool] failed", "tool", ftc.Function.Name, "err", err)
				out = fmt.Sprintf("Tool %s failed: %v", ftc.Function.Name, err)
			}

			msgs = append(msgs, openai.ToolMessage(out, ftc.ID))
		}
	}

	return nil, fmt.Errorf("max tool rounds (%d) exceeded", options.MaxRounds)
}

func toParams(systemPrompts []string, messages []ai.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(systemPrompts)+len(messages))
	for _, message := range systemPrompts {
		msgs = append(msgs, openai.SystemMessage(message))
	}
	for _, message := range messages {
		switch message.Role {
		case ai.RoleUser:
			msgs = append(msgs, openai.UserMessage(message.Message))
		case ai.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(message.Message))
		}
	}
	return msgs
}

func toToolParams(tools []ai.Tool) []openai.ChatCompletionToolUnionParam {
	openaiTools := make([]openai.ChatCompletionToolUnionParam, len(tools))
	for i, tool := range tools {
		openaiTools[i] = openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        tool.Name,
			Description: openai.String(tool.Description),
			Parameters:  tool.Parameters,
		})
	}
	return openaiTools
}

func addUsage(total *ai.ModelMetrics, m ai.ModelMetrics) {
	total.InputTokens += m.InputTokens
	total.OutputTokens += m.OutputTokens
	total.TotalTokens += m.TotalTokens
	total.DurationMs += m.DurationMs
}
