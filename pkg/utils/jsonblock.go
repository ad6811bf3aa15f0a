package utils

import "strings"

// ExtractJSONBlock pulls the JSON payload out of an LLM reply. Models
// usually wrap it in a ```json fence; when no fence is present it falls
// back to the outermost brace or bracket pair.
func ExtractJSONBlock(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	for _, fence := range []string{"```json", "```JSON", "```"} {
		start := strings.Index(text, fence)
		if start < 0 {
			continue
		}
		rest := text[start+len(fence):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		block := strings.TrimSpace(rest[:end])
		if block != "" {
			return block, true
		}
	}

	if block, ok := outermost(text, '{', '}'); ok {
		return block, true
	}
	if block, ok := outermost(text, '[', ']'); ok {
		return block, true
	}
	return "", false
}

func outermost(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
