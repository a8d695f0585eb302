package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestPlainPrompt(t *testing.T) {
	var out bytes.Buffer

	o := NewPlainIOFrom(strings.NewReader("kraken\n\n  ETH/USD  \n"), &out)
	ctx := context.Background()

	tests := []struct {
		def  string
		want string
	}{
		{"binance", "kraken"},
		{"binance", "binance"},
		{"", "ETH/USD"},
	}

	for _, tt := range tests {
		got, err := o.Prompt(ctx, "Enter exchange name", tt.def)
		if err != nil {
			t.Fatalf("Unexpected error: %s", err)
		}

		if got != tt.want {
			t.Errorf("Expected %q but got %q.", tt.want, got)
		}
	}

	if _, err := o.Prompt(ctx, "Enter exchange name", ""); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF once input is exhausted, got %v.", err)
	}

	if !strings.Contains(out.String(), "Enter exchange name (binance): ") {
		t.Errorf("Expected the default to be shown, got %q.", out.String())
	}
}

func TestPlainPromptAbandonedOnCancel(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	o := NewPlainIOFrom(r, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()

	if _, err := o.Prompt(ctx, "Select action", "3"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected the prompt to be abandoned, got %v.", err)
	}

	if time.Since(start) > 2*time.Second {
		t.Errorf("Expected the prompt to return promptly after cancellation.")
	}
}

func TestPlainConfirmReprompts(t *testing.T) {
	var out bytes.Buffer

	o := NewPlainIOFrom(strings.NewReader("maybe\nyes\n\n"), &out)

	ok, err := o.Confirm(context.Background(), "Save response to JSON file?", false)
	if err != nil || !ok {
		t.Fatalf("Expected yes after a reprompt, got %v (%v).", ok, err)
	}

	if !strings.Contains(out.String(), "Please enter Y or N") {
		t.Errorf("Expected an invalid answer to be reported.")
	}

	ok, err = o.Confirm(context.Background(), "Continue?", true)
	if err != nil || !ok {
		t.Errorf("Expected a blank answer to take the default, got %v (%v).", ok, err)
	}
}

func TestPlainSecretWithoutTerminal(t *testing.T) {
	var out bytes.Buffer

	o := NewPlainIOFrom(strings.NewReader("s3cr3t\n"), &out)

	got, err := o.Secret(context.Background(), "Enter Secret Key (optional)")
	if err != nil || got != "s3cr3t" {
		t.Fatalf("Unexpected secret %q (%v).", got, err)
	}

	if strings.Contains(out.String(), "s3cr3t") {
		t.Errorf("Expected the secret not to be written to the output.")
	}
}

func TestPlainSecretRestoresTerminalOnCancel(t *testing.T) {
	o := NewPlainIOFrom(strings.NewReader(""), io.Discard)

	block := make(chan struct{})
	defer close(block)

	o.readSecret = func() ([]byte, error) {
		<-block

		return nil, io.EOF
	}

	restored := 0
	o.saveTerm = func() func() {
		return func() { restored++ }
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := o.Secret(ctx, "Enter Secret Key (optional)"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected the secret prompt to be abandoned, got %v.", err)
	}

	if restored != 1 {
		t.Errorf("Expected the terminal to be restored once but got %d.", restored)
	}
}

func TestPlainSecretKeepsTerminalOnAnswer(t *testing.T) {
	o := NewPlainIOFrom(strings.NewReader(""), io.Discard)

	o.readSecret = func() ([]byte, error) {
		return []byte("s3cr3t"), nil
	}

	restored := 0
	o.saveTerm = func() func() {
		return func() { restored++ }
	}

	got, err := o.Secret(context.Background(), "Enter Secret Key (optional)")
	if err != nil || got != "s3cr3t" {
		t.Fatalf("Unexpected secret %q (%v).", got, err)
	}

	if restored != 0 {
		t.Errorf("Expected the terminal to be left alone after an answer but got %d restores.", restored)
	}
}

func TestPlainRendering(t *testing.T) {
	var out bytes.Buffer

	o := NewPlainIOFrom(strings.NewReader(""), &out)

	o.Table(Table{
		Title:   "Support Summary for kraken",
		Headers: []string{"Status", "Count", "Percentage"},
		Rows:    [][]string{{"Fully Supported", "30", "81.1%"}},
	})
	o.Panel(Panel{Title: "Security Notice", Body: "Credentials stay in memory.", Tone: Danger})
	o.JSON([]byte(`{"last":"30303.2"}`))

	s := out.String()
	for _, want := range []string{"Support Summary for kraken", "Fully Supported", "81.1%", "Security Notice", "Credentials stay in memory.", `"last": "30303.2"`} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected the output to contain %q, got:\n%s", want, s)
		}
	}
}

func TestBufferIO(t *testing.T) {
	o := NewBufferIO("kraken", "", "hunter2", "n")
	ctx := context.Background()

	if got, _ := o.Prompt(ctx, "Enter exchange name", "binance"); got != "kraken" {
		t.Errorf("Expected kraken but got %s.", got)
	}

	if got, _ := o.Prompt(ctx, "Enter API Key (optional)", ""); got != "" {
		t.Errorf("Expected a blank key but got %s.", got)
	}

	if got, _ := o.Secret(ctx, "Enter Secret Key (optional)"); got != "hunter2" {
		t.Errorf("Expected the secret to be returned.")
	}

	if ok, _ := o.Confirm(ctx, "Save?", true); ok {
		t.Errorf("Expected no.")
	}

	if _, err := o.Prompt(ctx, "Select action", "3"); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF once answers run out, got %v.", err)
	}

	if strings.Contains(o.Output(), "hunter2") {
		t.Errorf("Expected secrets to be masked in the captured output.")
	}

	if len(o.Prompts()) != 5 || o.Remaining() != 0 {
		t.Errorf("Unexpected prompt bookkeeping %v.", o.Prompts())
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	if _, err := NewBufferIO("x").Prompt(cancelled, "Select action", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected a cancelled context to abort the prompt, got %v.", err)
	}
}
