package upload

import (
	"fmt"
	"strings"
)

// SanitizeFilename reduces a client file name to ASCII letters, digits,
// dots, dashes, and underscores.  Path separators and runs of whitespace
// become single underscores, and leading or trailing dots and underscores
// are trimmed.  An empty result becomes "file".
func SanitizeFilename(name string) string {
	name = strings.NewReplacer("/", " ", `\`, " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "file"
	}
	return out
}

// HumanSize renders n bytes as B, KB, or MB with one decimal.
func HumanSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
