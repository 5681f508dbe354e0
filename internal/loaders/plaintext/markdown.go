package plaintext

import (
	"regexp"
	"strings"
)

var (
	codeBlock    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	blockquote   = regexp.MustCompile(`(?m)^>[ \t]?`)
	hr           = regexp.MustCompile(`(?m)^[-*_]{3,}[ \t]*$`)
	listMarkers  = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	emphasis     = regexp.MustCompile(`(\*\*|__|\*)([^*_\n]+)(\*\*|__|\*)`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// markdownTitle returns the first H1 heading, or "" if there is none.
func markdownTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}

// stripMarkdown removes common markdown formatting.
// Code is kept as text since clinical notes quote dosages and identifiers in backticks.
func stripMarkdown(content string) string {
	content = codeBlock.ReplaceAllStringFunc(content, func(block string) string {
		block = strings.TrimPrefix(block, "```")
		block = strings.TrimSuffix(block, "```")
		if i := strings.IndexByte(block, '\n'); i >= 0 {
			block = block[i+1:]
		}
		return block
	})
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$2")
	content = blockquote.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = multiNewline.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
