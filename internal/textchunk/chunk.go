package textchunk

import "errors"

// ErrInvalidMaxChars indicates a non-positive chunk size limit.
var ErrInvalidMaxChars = errors.New("textchunk: max chars must be positive")

// Chunk splits text into ordered pieces of at most maxChars runes each.
//
// The scan moves forward in windows of maxChars runes. When the window's
// right edge lands exactly on whitespace or at end of text, the cut happens
// there and the whitespace is consumed. Otherwise the nearest whitespace
// inside the window, searched backward from the right edge, becomes the cut
// point. A window with no usable whitespace is an unsplittable token and is
// hard cut at exactly maxChars runes.
//
// Limits are measured in runes, not bytes, so multibyte characters never
// split mid-sequence.
func Chunk(text string, maxChars int) ([]string, error) {
	if maxChars <= 0 {
		return nil, ErrInvalidMaxChars
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + maxChars
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		if isCutSpace(runes[end]) {
			chunks = append(chunks, string(runes[start:end]))
			start = end + 1
			continue
		}
		cut := -1
		for i := end - 1; i > start; i-- {
			if isCutSpace(runes[i]) {
				cut = i
				break
			}
		}
		if cut < 0 {
			chunks = append(chunks, string(runes[start:end]))
			start = end
			continue
		}
		chunks = append(chunks, string(runes[start:cut]))
		start = cut + 1
	}
	return chunks, nil
}

// isCutSpace reports whether r may serve as a cut point. Only plain spaces,
// tabs, and newlines qualify.
func isCutSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}
