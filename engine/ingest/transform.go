package ingest

import "strings"

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1500
	// DefaultOverlap is how many characters consecutive chunks share.
	DefaultOverlap = 200
)

// splitSeparators are tried in order when a chunk boundary must be chosen:
// prefer paragraph breaks, then line breaks, then word breaks.
var splitSeparators = []string{"\n\n", "\n", " "}

// SplitText splits text into chunks of at most size characters that overlap
// by roughly overlap characters. Boundaries land on the last separator
// inside the window so words and paragraphs stay intact when possible.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			if tail := strings.TrimSpace(text[start:]); tail != "" {
				chunks = append(chunks, tail)
			}
			break
		}

		cut := end
		for _, sep := range splitSeparators {
			if i := strings.LastIndex(text[start:end], sep); i > 0 {
				cut = start + i
				break
			}
		}

		if chunk := strings.TrimSpace(text[start:cut]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = cut // forward progress over separator-free runs
		}
		start = next
	}
	return chunks
}
