package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/lukehollenback/exprobe/exchange"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Outcome labels.
const (
	OK           = "ok"
	NotSupported = "not_supported"
	AuthRequired = "auth_required"
	Failed       = "error"
)

var (
	CallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "exprobe_calls_total", Help: "Endpoint invocations by outcome"},
		[]string{"exchange", "endpoint", "outcome"},
	)
	CallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "exprobe_call_duration_seconds", Help: "Endpoint invocation latency", Buckets: prometheus.DefBuckets},
		[]string{"exchange", "endpoint"},
	)
	SavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "exprobe_saves_total", Help: "Documents written to disk by outcome"},
		[]string{"kind", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(CallsTotal, CallDuration, SavesTotal)
}

//
// ObserveCall records one endpoint invocation.
//
func ObserveCall(exchangeID string, endpoint string, took time.Duration, err error) {
	CallsTotal.WithLabelValues(exchangeID, endpoint, Outcome(err)).Inc()
	CallDuration.WithLabelValues(exchangeID, endpoint).Observe(took.Seconds())
}

//
// ObserveSave records one attempt to persist a document.
//
func ObserveSave(kind string, err error) {
	outcome := OK
	if err != nil {
		outcome = Failed
	}

	SavesTotal.WithLabelValues(kind, outcome).Inc()
}

//
// Outcome maps an invocation error onto its metric label.
//
func Outcome(err error) string {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, exchange.ErrNotSupported):
		return NotSupported
	case errors.Is(err, exchange.ErrAuthRequired):
		return AuthRequired
	default:
		return Failed
	}
}

//
// Handler exposes the default registry.
//
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

//
// Serve exposes /metrics on the provided address until the context is cancelled.
//
func Serve(ctx context.Context, addr string, sugar *zap.SugaredLogger) *http.Server {
	srv := &http.Server{Addr: addr, Handler: Handler()}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorw("metrics listener stopped", "addr", addr, "error", err)
		}
	}()

	go func() {
		<-ctx.Done()

		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdown)
	}()

	sugar.Infow("serving metrics", "addr", addr)

	return srv
}
