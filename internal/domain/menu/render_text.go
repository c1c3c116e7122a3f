package menu

import "strings"

// TextRenderer renders documents as multi-line chat text.
type TextRenderer struct{}

func (TextRenderer) Render(doc Document) Reply {
	return Reply{Text: renderText(doc)}
}

func renderText(doc Document) string {
	if doc.Empty {
		return doc.Title
	}

	var sb strings.Builder
	sb.WriteString(doc.Title)
	sb.WriteString("\n\n")
	for _, b := range doc.Blocks {
		sb.WriteString(b.Heading)
		sb.WriteString("\n")
		for _, r := range b.Rows {
			if r.Label != "" {
				sb.WriteString(r.Label)
				sb.WriteString(": ")
			}
			sb.WriteString(r.Value)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
