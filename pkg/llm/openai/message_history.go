package openai

import (
	"github.com/openai/openai-go/v2"
	"github.com/tagus/physai-agent/pkg/interfaces"
)

// buildMessages constructs chat-completions messages in chronological order:
// system message, prior turns, then the current prompt
func buildMessages(system string, history []interfaces.Message, prompt string) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)

	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}

	for _, msg := range history {
		if converted, ok := convertMessage(msg); ok {
			messages = append(messages, converted)
		}
	}

	return append(messages, openai.UserMessage(prompt))
}

// convertMessage converts a history message; empty and unknown-role messages are dropped
func convertMessage(msg interfaces.Message) (openai.ChatCompletionMessageParamUnion, bool) {
	if msg.Content == "" {
		return openai.ChatCompletionMessageParamUnion{}, false
	}

	switch msg.Role {
	case interfaces.MessageRoleUser:
		return openai.UserMessage(msg.Content), true
	case interfaces.MessageRoleAssistant:
		return openai.AssistantMessage(msg.Content), true
	case interfaces.MessageRoleSystem:
		return openai.SystemMessage(msg.Content), true
	}

	return openai.ChatCompletionMessageParamUnion{}, false
}
