package mention

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeSpot prepares surface text for storage and comparison:
//   - applies Unicode NFC composition
//   - collapses whitespace runs into a single space
//   - trims leading and trailing whitespace
func NormalizeSpot(text string) string {
	if text == "" {
		return ""
	}

	var builder strings.Builder
	needSpace := false

	for _, r := range norm.NFC.String(text) {
		if unicode.IsSpace(r) {
			// Only separate words once something has been written
			if builder.Len() > 0 {
				needSpace = true
			}
			continue
		}
		if needSpace {
			builder.WriteByte(' ')
			needSpace = false
		}
		builder.WriteRune(r)
	}

	return builder.String()
}
