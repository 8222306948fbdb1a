package config

import "strings"

// Title returns the wiki page title for a service.
func (w WikiConfig) Title(id, name string) string {
	return strings.NewReplacer("{id}", id, "{name}", name).Replace(w.PageTitleFormat)
}
