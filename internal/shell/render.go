package shell

import "github.com/jedib0t/go-pretty/v6/text"

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusError
)

func statusColors(kind statusKind) text.Colors {
	switch kind {
	case statusOK:
		return text.Colors{text.FgGreen}
	case statusError:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgBlue}
	}
}

func (s *Interpreter) paint(kind statusKind, msg string) string {
	if !s.color {
		return msg
	}
	return statusColors(kind).Sprint(msg)
}
