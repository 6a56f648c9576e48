package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/Brutus1066/portr/internal/proc"
)

// PrintTree renders the ancestry chain down to the target process, then its
// direct children, capped so a busy supervisor does not flood the terminal.
func PrintTree(w io.Writer, chain, children []proc.TreeNode, colorEnabled bool) {
	dim, reset, magenta, green := "", "", "", ""
	if colorEnabled {
		dim, reset = colorDim, colorReset
		magenta, green = ansiByName["magenta"], ansiByName["green"]
	}

	for i, p := range chain {
		prefix := strings.Repeat("  ", i)
		if i > 0 {
			prefix += magenta + "└─ " + reset
		}
		nameColor := ""
		if p.IsTarget {
			nameColor = green
		}
		fmt.Fprintf(w, "%s%s%s%s (%spid %d%s)\n", prefix, nameColor, p.Name, reset, dim, p.PID, reset)
	}

	if len(children) == 0 {
		return
	}

	basePrefix := strings.Repeat("  ", len(chain))
	const limit = 10
	for i, child := range children {
		if i >= limit {
			fmt.Fprintf(w, "%s%s└─ %s... and %d more\n", basePrefix, magenta, reset, len(children)-limit)
			break
		}
		connector := "├─ "
		if i == len(children)-1 {
			connector = "└─ "
		}
		fmt.Fprintf(w, "%s%s%s%s%s (%spid %d%s)\n",
			basePrefix, magenta, connector, reset, child.Name, dim, child.PID, reset)
	}
}
