package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

//
// BufferIO is a scripted IO implementation: prompts consume queued answers and every piece of output
// is captured as plain text. Once the answers run out, prompts fail with io.EOF.
//
type BufferIO struct {
	mu      sync.Mutex
	inputs  []string
	out     strings.Builder
	prompts []string
}

var _ IO = (*BufferIO)(nil)

//
// NewBufferIO creates a BufferIO that answers prompts with the provided inputs, in order.
//
func NewBufferIO(inputs ...string) *BufferIO {
	return &BufferIO{inputs: inputs}
}

//
// Output returns everything written so far.
//
func (o *BufferIO) Output() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.out.String()
}

//
// Prompts returns the labels of every prompt shown so far.
//
func (o *BufferIO) Prompts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]string(nil), o.prompts...)
}

//
// Remaining returns the number of answers not consumed yet.
//
func (o *BufferIO) Remaining() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.inputs)
}

func (o *BufferIO) next(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.prompts = append(o.prompts, label)

	if len(o.inputs) == 0 {
		return "", io.EOF
	}

	line := o.inputs[0]
	o.inputs = o.inputs[1:]

	return line, nil
}

func (o *BufferIO) printf(format string, a ...interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()

	fmt.Fprintf(&o.out, format, a...)
}

func (o *BufferIO) Prompt(ctx context.Context, label string, def string) (string, error) {
	line, err := o.next(ctx, label)
	if err != nil {
		return "", err
	}

	if line = strings.TrimSpace(line); line == "" {
		line = def
	}

	o.printf("%s: %s\n", label, line)

	return line, nil
}

func (o *BufferIO) Secret(ctx context.Context, label string) (string, error) {
	line, err := o.next(ctx, label)
	if err != nil {
		return "", err
	}

	o.printf("%s: %s\n", label, strings.Repeat("*", len(line)))

	return strings.TrimSpace(line), nil
}

func (o *BufferIO) Confirm(ctx context.Context, label string, def bool) (bool, error) {
	for {
		line, err := o.next(ctx, label)
		if err != nil {
			return false, err
		}

		o.printf("%s %s: %s\n", label, confirmHint(def), line)

		if answer, ok := parseConfirm(line, def); ok {
			return answer, nil
		}
	}
}

func (o *BufferIO) Println(a ...interface{}) {
	o.printf("%s", fmt.Sprintln(a...))
}

func (o *BufferIO) Info(format string, a ...interface{}) {
	o.printf(format+"\n", a...)
}

func (o *BufferIO) Success(format string, a ...interface{}) {
	o.printf(format+"\n", a...)
}

func (o *BufferIO) Warn(format string, a ...interface{}) {
	o.printf(format+"\n", a...)
}

func (o *BufferIO) Error(format string, a ...interface{}) {
	o.printf(format+"\n", a...)
}

func (o *BufferIO) Table(t Table) {
	var b strings.Builder

	if t.Title != "" {
		b.WriteString(t.Title + "\n")
	}

	b.WriteString(strings.Join(t.Headers, " | ") + "\n")

	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, " | ") + "\n")
	}

	o.printf("%s", b.String())
}

func (o *BufferIO) Panel(p Panel) {
	o.printf("[%s]\n%s\n", p.Title, p.Body)
}

func (o *BufferIO) JSON(b []byte) {
	o.printf("%s\n", strings.TrimRight(string(b), "\n"))
}
