package agent

import (
	"sync"

	"github.com/cristofima/maf-graphrag-series/pkg/ai"
	"github.com/cristofima/maf-graphrag-series/pkg/logger"

	"github.com/pkoukk/tiktoken-go"
)

// messageOverhead approximates the per-message framing tokens of the chat
// format.
const messageOverhead = 4

// TokenCounter returns the number of tokens in text.
type TokenCounter func(text string) int

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// CountTokens counts tokens with the o200k_base encoding used by gpt-4o.
// When the encoding cannot be loaded it falls back to four bytes per token.
func CountTokens(text string) int {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding("o200k_base")
		if err != nil {
			logger.Warn("Failed to load tokenizer, approximating token counts", "err", err)
			return
		}
		enc = e
	})
	if enc == nil {
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// trimHistory drops the oldest messages until the conversation fits into
// budget tokens. The last message is always kept. A budget of zero or less
// disables trimming.
func trimHistory(messages []ai.ChatMessage, budget int, count TokenCounter) []ai.ChatMessage {
	if budget <= 0 || len(messages) == 0 {
		return messages
	}

	sizes := make([]int, len(messages))
	total := 0
	for i, m := range messages {
		sizes[i] = count(m.Message) + messageOverhead
		total += sizes[i]
	}

	start := 0
	for total > budget && start < len(messages)-1 {
		total -= sizes[start]
		start++
	}
	// Never open the conversation with an orphaned assistant turn.
	for start < len(messages)-1 && messages[start].Role == ai.RoleAssistant {
		start++
	}
	return messages[start:]
}
