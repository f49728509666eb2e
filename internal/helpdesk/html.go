package helpdesk

import (
	"regexp"
	"strings"
)

var (
	breakTag   = regexp.MustCompile(`(?i)<br\s*/?>`)
	paraClose  = regexp.MustCompile(`(?i)</p>`)
	anyTag     = regexp.MustCompile(`<[^>]*>`)
	blankLines = regexp.MustCompile(`\n\s*\n`)

	entities = strings.NewReplacer(
		"&nbsp;", " ",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
	)
)

// StripHTML converts a Freshdesk HTML body to plain text. Line breaks and
// closing paragraphs become newlines, tags are dropped, the common
// entities are decoded and runs of blank lines collapse to one.
func StripHTML(html string) string {
	if html == "" {
		return ""
	}
	s := breakTag.ReplaceAllString(html, "\n")
	s = paraClose.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = entities.Replace(s)
	// &amp; goes last: "&amp;lt;" must stay "&lt;".
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
