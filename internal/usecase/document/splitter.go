package document

import "strings"

// splitWords cuts cleaned text into word windows of size words, each window
// overlapping the previous one by overlap words. The last window may be
// shorter. overlap must be smaller than size (enforced by config).
func splitWords(text string, size, overlap int) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	if len(fields) <= size {
		return []string{strings.Join(fields, " ")}
	}

	step := size - overlap
	var parts []string
	for start := 0; start < len(fields); start += step {
		end := start + size
		if end > len(fields) {
			end = len(fields)
		}
		parts = append(parts, strings.Join(fields[start:end], " "))
		if end == len(fields) {
			break
		}
	}
	return parts
}
