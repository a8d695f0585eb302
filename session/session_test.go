package session

import (
	"context"
	"errors"
	"testing"

	"github.com/lukehollenback/exprobe/exchange"
)

type fakeClient struct {
	cfg       exchange.Config
	marketErr error
	cleared   int
}

func (o *fakeClient) ID() string                            { return "fake" }
func (o *fakeClient) Info() exchange.Info                   { return exchange.Info{ID: "fake"} }
func (o *fakeClient) Has() exchange.Has                     { return exchange.Has{} }
func (o *fakeClient) Endpoints() *exchange.Registry         { return exchange.NewRegistry(nil) }
func (o *fakeClient) LoadMarkets(ctx context.Context) error { return o.marketErr }
func (o *fakeClient) Symbols() []string                     { return nil }

func (o *fakeClient) ClearCredentials() {
	o.cleared++
	o.cfg.APIKey = ""
	o.cfg.Secret = ""
	o.cfg.Password = ""
}

func newDirectory(client *fakeClient, constructErr error) *exchange.Directory {
	dir := exchange.NewDirectory()
	dir.Register("fake", func(cfg exchange.Config) (exchange.Client, error) {
		if constructErr != nil {
			return nil, constructErr
		}

		client.cfg = cfg

		return client, nil
	})

	return dir
}

func TestSetupAndCleanup(t *testing.T) {
	client := &fakeClient{}
	s := New(newDirectory(client, nil), Options{Sandbox: true})

	creds := Credentials{APIKey: "key", Secret: "secret", Password: "pass"}

	if err := s.Setup(context.Background(), "  FAKE ", creds); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if !s.Ready() || s.ID() != "fake" || !s.Authenticated() {
		t.Fatalf("Expected a ready, authenticated session.")
	}

	if client.cfg.APIKey != "key" || client.cfg.Password != "pass" || !client.cfg.Sandbox {
		t.Errorf("Expected the credentials and options to reach the client, got %+v.", client.cfg)
	}

	s.Cleanup()

	if s.Ready() || s.ID() != "" || s.Client() != nil {
		t.Errorf("Expected the session to be empty after cleanup.")
	}

	if got := s.Credentials(); got.APIKey != "" || got.Secret != "" || got.Password != "" {
		t.Errorf("Expected every credential to read back empty, got %+v.", got)
	}

	if client.cleared != 1 || client.cfg.APIKey != "" {
		t.Errorf("Expected the client to be told to drop its credentials.")
	}

	s.Cleanup()

	if client.cleared != 1 {
		t.Errorf("Expected a second cleanup to be a no-op.")
	}
}

func TestSetupMarketFailureIsAWarning(t *testing.T) {
	client := &fakeClient{marketErr: errors.New("503 service unavailable")}
	s := New(newDirectory(client, nil), Options{})

	err := s.Setup(context.Background(), "fake", Credentials{})
	if !errors.Is(err, ErrMarketsUnavailable) {
		t.Fatalf("Expected a markets warning, got %v.", err)
	}

	if !s.Ready() || s.Authenticated() {
		t.Errorf("Expected an anonymous session that is still usable.")
	}
}

func TestSetupFailureLeavesNoClient(t *testing.T) {
	s := New(newDirectory(&fakeClient{}, errors.New("sandbox not available")), Options{})

	if err := s.Setup(context.Background(), "fake", Credentials{APIKey: "key", Secret: "secret"}); err == nil {
		t.Fatalf("Expected construction to fail.")
	}

	if s.Ready() || s.ID() != "" || !s.Credentials().Empty() {
		t.Errorf("Expected the session to be empty after a failed setup.")
	}

	if err := s.Setup(context.Background(), "nope", Credentials{}); !errors.Is(err, exchange.ErrUnknownExchange) {
		t.Errorf("Expected an unknown exchange error, got %v.", err)
	}
}

func TestSetupReplacesPreviousClient(t *testing.T) {
	first := &fakeClient{}
	dir := newDirectory(first, nil)
	s := New(dir, Options{})

	_ = s.Setup(context.Background(), "fake", Credentials{APIKey: "a", Secret: "b"})
	_ = s.Setup(context.Background(), "fake", Credentials{})

	if first.cleared != 1 {
		t.Errorf("Expected the previous client's credentials to be dropped before switching.")
	}

	if s.Authenticated() {
		t.Errorf("Expected the new session to be anonymous.")
	}
}
