package issuebody

import (
	"strings"
)

// Render serializes the document back into markdown. Sections are separated
// by a single blank line and the output never carries a trailing newline.
func (document *Document) Render() string {
	var blocks []string

	if len(document.Preamble) > 0 {
		blocks = append(blocks, strings.Join(document.Preamble, lineSeparatorConstant))
	}

	for _, section := range document.Sections {
		var builder strings.Builder
		builder.WriteString(sectionHeadingPrefixConstant)
		builder.WriteString(section.Title)
		if len(section.Lines) > 0 {
			builder.WriteString(lineSeparatorConstant)
			builder.WriteString(lineSeparatorConstant)
			builder.WriteString(strings.Join(section.Lines, lineSeparatorConstant))
		}
		blocks = append(blocks, builder.String())
	}

	return strings.Join(blocks, lineSeparatorConstant+lineSeparatorConstant)
}
