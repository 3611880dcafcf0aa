package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// descriptionPolicy allows the formatting tags job descriptions use.
// bluemonday policies are safe for concurrent use once built.
var descriptionPolicy = bluemonday.UGCPolicy()

// SanitizeHTML strips scripts, styles, event handlers and unknown tags from
// an untrusted description
func SanitizeHTML(raw string) string {
	return strings.TrimSpace(descriptionPolicy.Sanitize(raw))
}

// blockTags end a line when converting to plain text
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "section": true, "article": true,
}

// PlainText renders HTML as plain text, one block per line
func PlainText(raw string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(raw))

	var sb strings.Builder
	skip := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return collapseBlankLines(sb.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skip++
				continue
			}
			if tag == "li" {
				sb.WriteString("\n- ")
			} else if blockTags[tag] {
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skip > 0 {
				skip--
				continue
			}
			if blockTags[tag] {
				sb.WriteByte('\n')
			}
		case html.TextToken:
			if skip == 0 {
				sb.WriteByte(' ')
				sb.WriteString(strings.Join(strings.Fields(string(tokenizer.Text())), " "))
				sb.WriteByte(' ')
			}
		}
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || line == "-" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// Truncate shortens s to at most max runes, ending with "..." when cut
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 3 {
		return string([]rune(s)[:max])
	}
	return strings.TrimSpace(string([]rune(s)[:max-3])) + "..."
}
