package console

import (
	"context"
	"strings"
)

//
// IO is everything the explorer needs from a terminal. Every component receives it explicitly so that
// an entire session can be scripted in tests.
//
type IO interface {

	//
	// Prompt asks for one line of input. A blank answer yields def. It fails with the context's error
	// if the context is cancelled while waiting, and with io.EOF once input is exhausted.
	//
	Prompt(ctx context.Context, label string, def string) (string, error)

	//
	// Secret asks for one line of input without echoing it.
	//
	Secret(ctx context.Context, label string) (string, error)

	//
	// Confirm asks a yes/no question. A blank answer yields def.
	//
	Confirm(ctx context.Context, label string, def bool) (bool, error)

	Println(a ...interface{})
	Info(format string, a ...interface{})
	Success(format string, a ...interface{})
	Warn(format string, a ...interface{})
	Error(format string, a ...interface{})

	Table(t Table)
	Panel(p Panel)

	//
	// JSON prints an already encoded JSON document.
	//
	JSON(b []byte)
}

//
// Table is a titled grid of cells.
//
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

//
// Tone controls how loudly a panel is rendered.
//
type Tone int

const (
	Notice Tone = iota
	Danger
)

//
// Panel is a bordered block of text.
//
type Panel struct {
	Title string
	Body  string
	Tone  Tone
}

//
// parseConfirm interprets a yes/no answer. The second result is false if the answer is neither.
//
func parseConfirm(answer string, def bool) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return def, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	default:
		return false, false
	}
}

func confirmHint(def bool) string {
	if def {
		return "[Y/n]"
	}

	return "[y/N]"
}
