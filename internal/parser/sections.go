package parser

import "strings"

// ExtractSections returns one Section per line whose trimmed content starts with '#'.
// Malformed headings are parsed best-effort; nothing is validated.
func ExtractSections(text string) []Section {
	var sections []Section
	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}

		level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
		rest := strings.TrimPrefix(trimmed[level:], " ")
		title, id := ParseHeading(rest)
		sections = append(sections, Section{ID: id, Title: title, Level: level})
	}
	return sections
}

// splitLines splits on '\n' and drops a trailing '\r' from each line
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
