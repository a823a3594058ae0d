package util

// TruncateRunes 按字符数截断，超出部分以省略号收尾
func TruncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
