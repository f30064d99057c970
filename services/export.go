package services

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

var displayStrip = strings.NewReplacer("~~", "", "<del>", "", "</del>", "", "<s>", "", "</s>", "")

// ExportFilename builds "<origin>_to_<destination>_<DDMMYYYY>.pdf" keeping
// only letters, numbers, spaces and hyphens from the place names.
func ExportFilename(origin, destination string, now time.Time) string {
	return fmt.Sprintf("%s_to_%s_%s.pdf", cleanFilePart(origin), cleanFilePart(destination), now.Format("02012006"))
}

func cleanFilePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == ' ' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}

// CleanForDisplay removes strikethrough markup models like to emit.
func CleanForDisplay(text string) string {
	return displayStrip.Replace(text)
}
