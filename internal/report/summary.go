package report

import (
	"fmt"
	"strings"
)

// Markdown summarises an included report for terminal display.
func Markdown(inc *Included) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", inc.ServiceName)
	if inc.ServiceURL != "" {
		fmt.Fprintf(&b, "<%s>\n\n", inc.ServiceURL)
	}

	switch inc.Level {
	case LevelBlocked:
		b.WriteString("**Evaluation blocked.** Solve these problems first:\n\n")
	case LevelCompliant:
		b.WriteString("**Maturity level: 3** (fully compliant)\n\n")
	default:
		fmt.Fprintf(&b, "**Maturity level: %d**\n\n## To reach level %d\n\n", inc.Level, inc.Level+1)
	}
	for _, item := range inc.Actions.Next() {
		fmt.Fprintf(&b, "- %s\n", item)
	}

	if len(inc.Actions.Other) > 0 {
		b.WriteString("\n## Other issues\n\n")
		for _, item := range inc.Actions.Other {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	return b.String()
}
