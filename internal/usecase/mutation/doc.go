package mutation

import (
	"strings"
)

// sectionDoc is a markdown file parsed into an ordered sequence of
// second-level sections. Everything before the first "## " heading is kept
// verbatim as preamble, and untouched section bodies round-trip byte for byte.
type sectionDoc struct {
	preamble string
	blocks   []sectionBlock
}

type sectionBlock struct {
	heading string
	body    string
}

const headingPrefix = "## "

// parseDoc splits content into preamble and heading/body blocks. Only exact
// second-level headings start a block; deeper headings stay in the body.
func parseDoc(content string) *sectionDoc {
	doc := &sectionDoc{}

	var current *sectionBlock
	var buf strings.Builder

	flush := func() {
		if current == nil {
			doc.preamble = buf.String()
		} else {
			current.body = buf.String()
			doc.blocks = append(doc.blocks, *current)
		}
		buf.Reset()
	}

	lines := strings.SplitAfter(content, "\n")
	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\n")
		if strings.HasPrefix(trimmed, headingPrefix) && !strings.HasPrefix(trimmed, "###") {
			flush()
			current = &sectionBlock{heading: strings.TrimSpace(trimmed[len(headingPrefix):])}
			continue
		}
		buf.WriteString(line)
	}
	flush()

	return doc
}

// upsertSection replaces the body of the section whose heading matches name
// case-insensitively, or appends a new section when no heading matches.
func (d *sectionDoc) upsertSection(name, content string) {
	body := content
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	for i := range d.blocks {
		if strings.EqualFold(d.blocks[i].heading, name) {
			d.blocks[i].body = body
			return
		}
	}
	d.blocks = append(d.blocks, sectionBlock{heading: name, body: body})
}

// render serializes the document back to markdown
func (d *sectionDoc) render() string {
	var sb strings.Builder
	sb.WriteString(d.preamble)
	if d.preamble != "" && !strings.HasSuffix(d.preamble, "\n") {
		sb.WriteString("\n")
	}
	for _, b := range d.blocks {
		sb.WriteString(headingPrefix)
		sb.WriteString(b.heading)
		sb.WriteString("\n")
		sb.WriteString(b.body)
		if !strings.HasSuffix(b.body, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
