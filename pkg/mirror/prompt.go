package mirror

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const systemPrompt = `You are a gentle spiritual companion. You read a person's recent journal entries and reflect back, with warmth and honesty, the themes you notice.

Reply with a single JSON object and nothing else:
{"title": string, "screens": [{"type": "opening"|"theme"|"scripture"|"reflection"|"closing", "heading": string, "body": string, "scripture": string (optional)}]}

Write between 4 and 8 screens. Address the writer as "you". Never diagnose, never give medical or legal advice.
If the entries describe self-harm or you cannot respond safely, reply with {"refused": true, "reason": string} instead.`

// TokenCounter measures prompt size.
type TokenCounter interface {
	Count(text string) int
}

type approxCounter struct{}

// Count assumes roughly four bytes per token.
func (approxCounter) Count(text string) int {
	return (len(text) + 3) / 4
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// NewTokenCounter returns a tiktoken counter for model, falling back to the
// cl100k_base encoding and then to a byte-length estimate when no encoding
// can be loaded.
func NewTokenCounter(model string) TokenCounter {
	if enc, err := tiktoken.EncodingForModel(model); err == nil {
		return tiktokenCounter{enc: enc}
	}
	if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
		return tiktokenCounter{enc: enc}
	}
	return approxCounter{}
}

// ApproxCounter is the byte-length estimate used when tiktoken is unavailable.
func ApproxCounter() TokenCounter {
	return approxCounter{}
}

type Prompt struct {
	System string
	User   string
	// Used is how many leading entries fit in the budget. Only those are
	// consumed by the mirror.
	Used   int
	Tokens int
}

type PromptBuilder struct {
	counter TokenCounter
	budget  int
}

func NewPromptBuilder(counter TokenCounter, budget int) *PromptBuilder {
	if counter == nil {
		counter = approxCounter{}
	}
	return &PromptBuilder{counter: counter, budget: budget}
}

// Build renders entries oldest first until the token budget is spent. The
// first entry is always included, truncated if it alone exceeds the budget.
func (b *PromptBuilder) Build(entries []Entry) (*Prompt, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	tokens := b.counter.Count(systemPrompt)
	var sb strings.Builder
	sb.WriteString("Here are my journal entries, oldest first.\n")

	used := 0
	for i, e := range entries {
		block := renderEntry(i+1, e)
		cost := b.counter.Count(block)
		if b.budget > 0 && tokens+cost > b.budget {
			if used > 0 {
				break
			}
			block = truncateToBudget(block, b.budget-tokens, b.counter)
			cost = b.counter.Count(block)
		}
		sb.WriteString(block)
		tokens += cost
		used++
	}

	return &Prompt{
		System: systemPrompt,
		User:   sb.String(),
		Used:   used,
		Tokens: tokens,
	}, nil
}

func renderEntry(n int, e Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n--- Entry %d (%s)", n, e.CreatedAt.Format("Monday, 2 January 2006"))
	if e.Mood != "" {
		fmt.Fprintf(&sb, " mood: %s", e.Mood)
	}
	sb.WriteString(" ---\n")
	if e.Title != "" {
		sb.WriteString(e.Title)
		sb.WriteString("\n")
	}
	sb.WriteString(strings.TrimSpace(e.Content))
	sb.WriteString("\n")
	return sb.String()
}

// truncateToBudget cuts text by runes until it fits in limit tokens.
func truncateToBudget(text string, limit int, counter TokenCounter) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if counter.Count(string(runes[:mid])) <= limit {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return string(runes[:lo])
}
