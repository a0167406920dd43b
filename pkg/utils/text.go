package utils

// Truncate returns s truncated to maxLen runes, with "..." appended if
// truncated. Cutting on rune boundaries keeps multi-byte text intact.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
