package textsplit

import "strings"

// SplitWords splits text into chunks of approximately chunkWords words with
// an optional word overlap between consecutive chunks. Word-count chunking
// keeps sentence fragments intact better than byte slicing for prose
// documents headed for an embedding model.
func SplitWords(text string, chunkWords int, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if chunkWords <= 0 {
		chunkWords = 500
	}
	if len(words) <= chunkWords {
		return []string{strings.Join(words, " ")}
	}

	step := chunkWords - overlap
	if step <= 0 {
		step = chunkWords // fallback if overlap >= chunkWords
	}

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + chunkWords
		if end > len(words) {
			end = len(words)
		}

		chunks = append(chunks, strings.Join(words[i:end], " "))

		if end == len(words) {
			break
		}
	}

	return chunks
}
