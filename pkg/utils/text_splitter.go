package utils

import "strings"

// SplitSemantic splits text into chunks between minSize and maxSize
// characters. It prefers paragraph boundaries, falls back to sentence
// boundaries for oversized paragraphs, and only hard-slices when a
// single sentence exceeds maxSize.
func SplitSemantic(text string, minSize, maxSize int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxSize <= 0 {
		maxSize = 1500
	}
	if minSize <= 0 || minSize > maxSize {
		minSize = maxSize / 4
	}

	if len(text) <= maxSize {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
	}

	for _, para := range splitParagraphs(text) {
		if current.Len() > 0 && current.Len()+len(para) > maxSize {
			flush()
		}

		if len(para) <= maxSize {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(para)
			if current.Len() >= minSize {
				flush()
			}
			continue
		}

		// Paragraph too large on its own: break by sentences.
		for _, sentence := range splitSentences(para) {
			if current.Len() > 0 && current.Len()+len(sentence) > maxSize {
				flush()
			}
			if len(sentence) > maxSize {
				flush()
				chunks = append(chunks, sliceRunes(sentence, maxSize)...)
				continue
			}
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(sentence)
			if current.Len() >= minSize {
				flush()
			}
		}
	}
	flush()

	return chunks
}

func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	var paras []string
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

func splitSentences(text string) []string {
	var sentences []string
	var sb strings.Builder
	for _, r := range text {
		sb.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(sb.String())
			if s != "" {
				sentences = append(sentences, s)
			}
			sb.Reset()
		}
	}
	if s := strings.TrimSpace(sb.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func sliceRunes(text string, size int) []string {
	runes := []rune(text)
	var parts []string
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[i:end]))
	}
	return parts
}
