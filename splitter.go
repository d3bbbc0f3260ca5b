package caravan

// messageChunkLimit is the Discord-safe chunk size, counted in code points.
const messageChunkLimit = 1000

// SplitMessage splits text into chunks of at most limit code points,
// preserving order and content exactly. Counting runes rather than bytes
// keeps multi-byte scripts from being cut short of the platform limit.
func SplitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var chunks []string
	for len(runes) > 0 {
		n := limit
		if len(runes) < n {
			n = len(runes)
		}
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}
	return chunks
}
