package shell

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

var helpRows = [][2]string{
	{"exit", "disconnect from the daemon and exit the shell"},
	{"quit", "instruct the daemon to shut down"},
	{"lookup <prog_name>", "get learning data for a program"},
}

func renderHelp() string {
	tw := table.NewWriter()
	style := table.StyleDefault
	style.Options = table.OptionsNoBordersAndSeparators
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = " "
	tw.SetStyle(style)

	for _, row := range helpRows {
		tw.AppendRow(table.Row{row[0], "- " + row[1]})
	}

	lines := strings.Split(tw.Render(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimRight(line, " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n") + "\n"
}
