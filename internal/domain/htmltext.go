package domain

import (
	"strings"

	"golang.org/x/net/html"
)

// lineEndTags end a visual line when closed.
var lineEndTags = map[string]bool{
	"li": true, "p": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// HTMLToLines reduces an HTML document to its visible text, one entry per
// layout line. Script and style content is dropped. Closing list item,
// paragraph, heading and table row tags end a line, as do <br> and newlines
// in the source; every other tag becomes a space. Entities are decoded,
// whitespace is collapsed and empty lines are omitted.
func HTMLToLines(doc string) []string {
	var (
		b    strings.Builder
		skip int
	)
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case tag == "script" || tag == "style":
				if tt == html.StartTagToken {
					skip++
				}
			case tag == "br":
				b.WriteByte('\n')
			default:
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "script" || tag == "style":
				if skip > 0 {
					skip--
				}
			case lineEndTags[tag]:
				b.WriteByte('\n')
			default:
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}

	return splitLines(b.String())
}

// HTMLToText flattens an HTML fragment to a single line of visible text.
func HTMLToText(fragment string) string {
	return strings.Join(HTMLToLines(fragment), " ")
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r", ""), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = collapseSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
