package stream

import (
	"context"
	"fmt"
	"net/http"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/lukehollenback/exprobe/structs/evictingqueue"
	"go.uber.org/zap"
)

const (
	DefaultWindow = 5 * time.Second
	DefaultLimit  = 10
)

//
// Spec describes one listening session against a websocket feed.
//
type Spec struct {
	URL    string
	Header http.Header

	// Subscribe is written as a JSON frame right after connecting. Nil skips the subscription.
	Subscribe interface{}

	// Decode turns a raw frame into a value to keep. Frames for which it reports false (heartbeats,
	// acknowledgements) are dropped.
	Decode func(raw []byte) (interface{}, bool)

	// Window is how long the feed is listened to.
	Window time.Duration

	// Limit is how many of the most recent decoded values are kept.
	Limit int

	Logger *zap.SugaredLogger
}

type frame struct {
	data []byte
	err  error
}

//
// Collect connects to a websocket feed, optionally subscribes, and listens for a fixed window. It
// returns the most recent Limit decoded values in the order they were received.
//
func Collect(ctx context.Context, spec Spec) ([]interface{}, error) {
	sugar := spec.Logger
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}

	if spec.Window <= 0 {
		spec.Window = DefaultWindow
	}

	if spec.Limit <= 0 {
		spec.Limit = DefaultLimit
	}

	if spec.Decode == nil {
		spec.Decode = func(raw []byte) (interface{}, bool) { return string(raw), true }
	}

	//
	// Connect to the feed.
	//
	st := connecting
	sugar.Debugw("stream state", "url", spec.URL, "state", st)

	conn, _, err := ws.DefaultDialer.DialContext(ctx, spec.URL, spec.Header)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", spec.URL, err)
	}
	defer func() {
		_ = conn.Close()
		sugar.Debugw("stream state", "url", spec.URL, "state", disconnected)
	}()

	st = connected
	sugar.Debugw("stream state", "url", spec.URL, "state", st)

	//
	// Subscribe to the relevant channels.
	//
	if spec.Subscribe != nil {
		if err := conn.WriteJSON(spec.Subscribe); err != nil {
			return nil, fmt.Errorf("subscribe to %s: %w", spec.URL, err)
		}

		st = subscribed
		sugar.Debugw("stream state", "url", spec.URL, "state", st)
	}

	//
	// Read frames on a separate goroutine so that the window and the context can interrupt a
	// blocked read. Closing the connection unblocks it.
	//
	chFrame := make(chan frame)
	chDone := make(chan struct{})
	defer close(chDone)

	go func() {
		for {
			_, data, err := conn.ReadMessage()

			select {
			case chFrame <- frame{data: data, err: err}:
			case <-chDone:
				return
			}

			if err != nil {
				return
			}
		}
	}()

	queue := evictingqueue.New[interface{}](spec.Limit)
	timer := time.NewTimer(spec.Window)
	defer timer.Stop()

	received := 0

	for {
		select {
		case <-ctx.Done():
			return queue.Items(), ctx.Err()

		case <-timer.C:
			sugar.Debugw("stream window elapsed", "url", spec.URL, "received", received, "kept", queue.Len())

			return queue.Items(), nil

		case f := <-chFrame:
			if f.err != nil {
				if received > 0 && ws.IsCloseError(f.err, ws.CloseNormalClosure, ws.CloseGoingAway) {
					return queue.Items(), nil
				}

				return queue.Items(), fmt.Errorf("read from %s: %w", spec.URL, f.err)
			}

			if v, keep := spec.Decode(f.data); keep {
				received++
				queue.Add(v)
			}
		}
	}
}
