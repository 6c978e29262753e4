package briefing

import (
	"encoding/json"
	"strings"

	"nmai-api/pkg/llm"
)

// MaxHistoryTurns is how many trailing history entries reach the model.
const MaxHistoryTurns = 10

// Default prompts used when the user sends an empty message.
const (
	DefaultImagePrompt = "Tolong analisis gambar atau chart yang saya kirim secara edukatif."
	DefaultTextPrompt  = "Tolong berikan wawasan edukatif seputar pasar."
)

// Turn is one earlier message of the conversation as the frontend sends it.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type rawTurn struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// ParseHistory decodes the history form field, a JSON array of
// {role, content}, keeping the last MaxHistoryTurns entries. Content may
// be a string, an array of strings or {text} parts, or an object.
// Malformed input yields no history.
func ParseHistory(data string) []Turn {
	if strings.TrimSpace(data) == "" {
		return nil
	}
	var raws []rawTurn
	if err := json.Unmarshal([]byte(data), &raws); err != nil {
		return nil
	}
	return TrimHistory(convertTurns(raws))
}

// TrimHistory keeps the last MaxHistoryTurns turns.
func TrimHistory(turns []Turn) []Turn {
	if len(turns) > MaxHistoryTurns {
		return turns[len(turns)-MaxHistoryTurns:]
	}
	return turns
}

func convertTurns(raws []rawTurn) []Turn {
	out := make([]Turn, 0, len(raws))
	for _, r := range raws {
		out = append(out, Turn{Role: r.Role, Content: contentText(r.Content)})
	}
	return out
}

func contentText(raw json.RawMessage) string {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return ""
	}
	switch c := v.(type) {
	case string:
		return c
	case []any:
		var parts []string
		for _, item := range c {
			switch p := item.(type) {
			case string:
				if p != "" {
					parts = append(parts, p)
				}
			case map[string]any:
				if s, ok := p["text"].(string); ok && s != "" {
					parts = append(parts, s)
				} else if s, ok := p["value"].(string); ok && s != "" && p["type"] != nil {
					parts = append(parts, s)
				}
			}
		}
		return strings.Join(parts, "\n")
	case map[string]any:
		if s, ok := c["text"].(string); ok && s != "" {
			return s
		}
		return string(raw)
	default:
		return ""
	}
}

// HistoryMessages maps turns to chat messages; "ai" and "assistant" become
// assistant turns and everything else a user turn.
func HistoryMessages(turns []Turn) []llm.Message {
	out := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Role == "ai" || t.Role == llm.RoleAssistant {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: t.Content})
	}
	return out
}

// UserPrompt trims prompt and substitutes the default prompt when empty.
func UserPrompt(prompt string, hasImage bool) string {
	if p := strings.TrimSpace(prompt); p != "" {
		return p
	}
	if hasImage {
		return DefaultImagePrompt
	}
	return DefaultTextPrompt
}

// UserText appends attachment text to the prompt under a fixed heading.
func UserText(prompt, fileText string) string {
	if fileText == "" {
		return prompt
	}
	return prompt + "\n\n=== DATA DARI FILE TERLAMPIR ===\n" +
		"Format bisa berupa teks/CSV/Excel yang sudah diringkas ke tabel.\n\n" +
		fileText
}
