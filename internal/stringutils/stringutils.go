// Package stringutils escapes text for Confluence storage-format pages.
package stringutils

import (
	"fmt"
	"html"
	"strings"
)

// AlertStyle is the inline style used for problems shown on a page.
const AlertStyle = "color: rgb(255,0,0);"

// Text escapes s as element content. Non-ASCII runes become numeric
// character references and newlines become <br />.
func Text(s string) string {
	escaped := html.EscapeString(s)
	var b strings.Builder
	b.Grow(len(escaped))
	for _, r := range escaped {
		switch {
		case r == '\n':
			b.WriteString("<br />")
		case r > 0x7e:
			fmt.Fprintf(&b, "&#%d;", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Attr escapes s for use inside a double-quoted attribute.
func Attr(s string) string {
	return html.EscapeString(s)
}

// Alert wraps text in a red span.
func Alert(text string) string {
	return fmt.Sprintf(`<span style="%s">%s</span>`, AlertStyle, Text(text))
}

// OrAlert returns the escaped text, or an alert with missing when text is empty.
func OrAlert(text, missing string) string {
	if text == "" {
		return Alert(missing)
	}
	return Text(text)
}

// Link renders an anchor with escaped href and body text.
func Link(href, text string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, Attr(href), Text(text))
}

// CodeLink renders an anchor whose body is the URL in a code element.
func CodeLink(href string) string {
	return fmt.Sprintf(`<a href="%s"><code>%s</code></a>`, Attr(href), Text(href))
}
