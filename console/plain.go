package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/logrusorgru/aurora"
	"github.com/tidwall/pretty"
	"golang.org/x/term"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("87")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	panelColors = map[Tone]lipgloss.Color{
		Notice: lipgloss.Color("39"),
		Danger: lipgloss.Color("196"),
	}
)

type request struct {
	secret bool
	reply  chan result
}

type result struct {
	line string
	err  error
}

//
// PlainIO implements IO on top of a terminal (or any reader/writer pair). Input is read by a single
// goroutine so that a pending prompt can be abandoned when the context is cancelled.
//
type PlainIO struct {
	in  *bufio.Reader
	out io.Writer
	tty bool
	au  aurora.Aurora

	// readSecret reads a line without echo. When nil, secrets are read like any other line.
	readSecret func() ([]byte, error)

	// saveTerm snapshots the terminal and returns a function restoring it.
	saveTerm func() func()

	mu       sync.Mutex
	once     sync.Once
	requests chan request
}

//
// NewPlainIO creates a PlainIO bound to stdin and stdout. Colours and hidden secret input are only
// used when both are terminals.
//
func NewPlainIO() *PlainIO {
	tty := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))

	o := newPlainIO(os.Stdin, os.Stdout, tty)

	if tty {
		fd := int(os.Stdin.Fd())

		o.readSecret = func() ([]byte, error) {
			return term.ReadPassword(fd)
		}

		o.saveTerm = func() func() {
			state, err := term.GetState(fd)
			if err != nil {
				return func() {}
			}

			return func() {
				_ = term.Restore(fd, state)
			}
		}
	}

	return o
}

//
// NewPlainIOFrom creates a colourless PlainIO over the provided reader and writer.
//
func NewPlainIOFrom(in io.Reader, out io.Writer) *PlainIO {
	return newPlainIO(in, out, false)
}

func newPlainIO(in io.Reader, out io.Writer, tty bool) *PlainIO {
	return &PlainIO{
		in:       bufio.NewReader(in),
		out:      out,
		tty:      tty,
		au:       aurora.NewAurora(tty),
		requests: make(chan request),
	}
}

//
// serve reads input on behalf of prompts. It runs for the lifetime of the process.
//
func (o *PlainIO) serve() {
	for req := range o.requests {
		var r result

		if req.secret && o.readSecret != nil {
			b, err := o.readSecret()
			r = result{line: string(b), err: err}

			o.write("\n")
		} else {
			line, err := o.in.ReadString('\n')
			if err == io.EOF && line != "" {
				err = nil
			}

			r = result{line: strings.TrimRight(line, "\r\n"), err: err}
		}

		req.reply <- r
	}
}

func (o *PlainIO) read(ctx context.Context, secret bool) (string, error) {
	o.once.Do(func() {
		go o.serve()
	})

	reply := make(chan result, 1)

	//
	// An abandoned secret prompt leaves echo switched off, so the terminal is put back by hand.
	//
	restore := func() {}
	if secret && o.saveTerm != nil {
		restore = o.saveTerm()
	}

	select {
	case o.requests <- request{secret: secret, reply: reply}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case r := <-reply:
		return r.line, r.err
	case <-ctx.Done():
		restore()

		return "", ctx.Err()
	}
}

func (o *PlainIO) write(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	_, _ = io.WriteString(o.out, s)
}

func (o *PlainIO) Prompt(ctx context.Context, label string, def string) (string, error) {
	if def != "" {
		o.write(fmt.Sprintf("%s %s: ", o.au.Bold(label), o.au.Cyan("("+def+")")))
	} else {
		o.write(fmt.Sprintf("%s: ", o.au.Bold(label)))
	}

	line, err := o.read(ctx, false)
	if err != nil {
		return "", err
	}

	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}

	return line, nil
}

func (o *PlainIO) Secret(ctx context.Context, label string) (string, error) {
	o.write(fmt.Sprintf("%s: ", o.au.Bold(label)))

	line, err := o.read(ctx, true)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func (o *PlainIO) Confirm(ctx context.Context, label string, def bool) (bool, error) {
	for {
		o.write(fmt.Sprintf("%s %s: ", o.au.Bold(label), confirmHint(def)))

		line, err := o.read(ctx, false)
		if err != nil {
			return false, err
		}

		if answer, ok := parseConfirm(line, def); ok {
			return answer, nil
		}

		o.Error("Please enter Y or N")
	}
}

func (o *PlainIO) Println(a ...interface{}) {
	o.write(fmt.Sprintln(a...))
}

func (o *PlainIO) Info(format string, a ...interface{}) {
	o.write(fmt.Sprintln(o.au.Blue(fmt.Sprintf(format, a...))))
}

func (o *PlainIO) Success(format string, a ...interface{}) {
	o.write(fmt.Sprintln(o.au.Green(fmt.Sprintf(format, a...))))
}

func (o *PlainIO) Warn(format string, a ...interface{}) {
	o.write(fmt.Sprintln(o.au.Yellow(fmt.Sprintf(format, a...))))
}

func (o *PlainIO) Error(format string, a ...interface{}) {
	o.write(fmt.Sprintln(o.au.Red(fmt.Sprintf(format, a...))))
}

func (o *PlainIO) Table(t Table) {
	o.write(renderTable(t, o.tty) + "\n")
}

func (o *PlainIO) Panel(p Panel) {
	o.write(renderPanel(p, o.tty) + "\n")
}

func (o *PlainIO) JSON(b []byte) {
	b = pretty.Pretty(b)
	if o.tty {
		b = pretty.Color(b, nil)
	}

	o.write(string(b))
}

//
// renderTable draws a bordered table. Without a terminal the styles are dropped but the grid is
// kept.
//
func renderTable(t Table, styled bool) string {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(t.Headers...).
		Rows(t.Rows...)

	if styled {
		tbl = tbl.
			BorderStyle(borderStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}

				return cellStyle
			})
	} else {
		tbl = tbl.StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
	}

	if t.Title == "" {
		return tbl.String()
	}

	title := t.Title
	if styled {
		title = titleStyle.Render(title)
	}

	return title + "\n" + tbl.String()
}

func renderPanel(p Panel, styled bool) string {
	style := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	title := p.Title
	if styled {
		style = style.BorderForeground(panelColors[p.Tone])
		title = lipgloss.NewStyle().Bold(true).Foreground(panelColors[p.Tone]).Render(title)
	}

	if p.Title == "" {
		return style.Render(p.Body)
	}

	return style.Render(title + "\n" + p.Body)
}
