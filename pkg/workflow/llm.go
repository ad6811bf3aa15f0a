package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/utils"
)

// CallJSON sends a prompt expecting a fenced JSON reply and decodes it
// into out. An unparsable or empty reply gets exactly one retry before
// the error surfaces; callers fall back to their deterministic rule.
func CallJSON(ctx context.Context, provider llm.LLMProvider, prompt string, out any, opts ...llm.Option) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		reply, err := provider.Generate(ctx, prompt, opts...)
		if err != nil {
			lastErr = err
			continue
		}
		block, ok := utils.ExtractJSONBlock(reply)
		if !ok {
			lastErr = fmt.Errorf("no JSON block in reply")
			continue
		}
		if err := json.Unmarshal([]byte(block), out); err != nil {
			lastErr = fmt.Errorf("decode JSON block: %w", err)
			continue
		}
		return nil
	}
	return fmt.Errorf("llm json contract failed: %w", lastErr)
}
