package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"svcwiki/internal/stringutils"
)

// markdown renders descriptions. Raw HTML in the source is omitted.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Footnote, extension.DefinitionList),
	goldmark.WithRendererOptions(html.WithXHTML()),
)

// renderMarkdown converts a catalog description to XHTML. If conversion
// fails the text is shown escaped.
func renderMarkdown(src string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(strings.TrimSpace(src)), &buf); err != nil || buf.Len() == 0 {
		return "<p>" + stringutils.Text(src) + "</p>"
	}
	return buf.String()
}

// PanelStyle configures the Confluence panel macro.
type PanelStyle struct {
	BgColor     string
	BorderWidth int
	BorderStyle string
	BorderColor string
}

var (
	descriptionPanel = PanelStyle{BgColor: "#ffffff", BorderWidth: 2, BorderStyle: "solid", BorderColor: "#cccc66"}
	indexPanel       = PanelStyle{BgColor: "#f3ffac", BorderWidth: 2, BorderStyle: "solid", BorderColor: "#cccc66"}
)

func panel(style PanelStyle, body string) string {
	var b strings.Builder
	b.WriteString(`<ac:structured-macro ac:name="panel">`)
	fmt.Fprintf(&b, `<ac:parameter ac:name="bgColor">%s</ac:parameter>`, style.BgColor)
	fmt.Fprintf(&b, `<ac:parameter ac:name="borderWidth">%d</ac:parameter>`, style.BorderWidth)
	fmt.Fprintf(&b, `<ac:parameter ac:name="borderStyle">%s</ac:parameter>`, style.BorderStyle)
	fmt.Fprintf(&b, `<ac:parameter ac:name="borderColor">%s</ac:parameter>`, style.BorderColor)
	b.WriteString("<ac:rich-text-body>")
	b.WriteString(body)
	b.WriteString("</ac:rich-text-body></ac:structured-macro>\n")
	return b.String()
}

// pageLink renders a link to another page in the same space.
func pageLink(title, text string) string {
	return fmt.Sprintf(`<ac:link><ri:page ri:content-title="%s" /><ac:plain-text-link-body><![CDATA[%s]]></ac:plain-text-link-body></ac:link>`,
		stringutils.Attr(title), strings.ReplaceAll(text, "]]>", "]]]]><![CDATA[>"))
}
