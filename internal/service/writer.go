package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"hdbagent/internal/model"
)

const writerPrompt = `You write a concise answer from structured tool data.
Rules:
- If 'low_supply' was used, state it's a proxy via low resale volume (BTO-launch data not available).
- If price table is present, mention discount & affordability assumptions briefly.
- Bullet points plus a short paragraph. No invented numbers.
DATA:
`

// Writer composes the final prose answer from a tool's structured result.
// It performs no retries and no validation of the generated prose; a
// missing answer is not recoverable at this layer, so backend failures
// propagate.
type Writer struct {
	gen          TextGenerator
	maxNewTokens int
}

// NewWriter creates an answer writer over the generation backend.
func NewWriter(gen TextGenerator, maxNewTokens int) *Writer {
	return &Writer{gen: gen, maxNewTokens: maxNewTokens}
}

// Write renders the tool result and the original user text into the fixed
// writer prompt and returns the backend's trimmed output verbatim.
func (w *Writer) Write(ctx context.Context, data model.ToolResult, userText string) (string, error) {
	payload := struct {
		Tool   string           `json:"tool"`
		Result model.ToolResult `json:"result"`
	}{Tool: data.ToolName(), Result: data}

	j, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool result: %w", err)
	}

	prompt := writerPrompt + string(j) + "\nUser: " + userText + "\nAnswer:"
	out, err := w.gen.Generate(ctx, prompt, w.maxNewTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
