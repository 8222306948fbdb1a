package confluence

import (
	"encoding/json"
	"strings"
)

// Page is a wiki page as returned by getPage or storePage. Scalar fields are
// decoded whether the server sends strings or numbers; the raw JSON is kept
// so an update can echo exactly what the server sent.
type Page struct {
	ID       string
	Space    string
	Title    string
	Content  string
	Version  string
	ParentID string

	raw map[string]json.RawMessage
}

func newPage(raw map[string]json.RawMessage) *Page {
	return &Page{
		ID:       rawString(raw["id"]),
		Space:    rawString(raw["space"]),
		Title:    rawString(raw["title"]),
		Content:  rawString(raw["content"]),
		Version:  rawString(raw["version"]),
		ParentID: rawString(raw["parentId"]),
		raw:      raw,
	}
}

// Raw returns the JSON the server sent for field, or nil.
func (p *Page) Raw(field string) json.RawMessage {
	return p.raw[field]
}

// rawString decodes a JSON string or the literal text of any other scalar.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}
