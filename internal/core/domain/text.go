package domain

import "strings"

// LinesFromPages concatenates page texts in order and splits them on line
// breaks. Each page is terminated with a line break so the last line of one
// page never fuses with the first line of the next.
func LinesFromPages(pages []string) []string {
	var b strings.Builder
	for _, page := range pages {
		b.WriteString(page)
		if page != "" && !strings.HasSuffix(page, "\n") {
			b.WriteByte('\n')
		}
	}
	text := strings.TrimSuffix(b.String(), "\n")
	if text == "" {
		return []string{}
	}
	return strings.Split(text, "\n")
}
