package explorer

import (
	"context"
	"fmt"
	"strings"

	"github.com/lukehollenback/exprobe/console"
	"github.com/lukehollenback/exprobe/invoke"
)

//
// TestEndpoint collects the endpoint's parameters, calls it, shows what came back, and offers to
// save it.
//
func (o *Explorer) TestEndpoint(ctx context.Context, name string) error {
	client := o.session.Client()
	if client == nil {
		o.io.Error("No exchange instance available")

		return nil
	}

	e, ok := client.Endpoints().Get(name)
	if !ok {
		o.io.Error("%s has no endpoint named %q", client.ID(), name)

		return nil
	}

	params := make([]string, len(e.Params))
	for i, p := range e.Params {
		params[i] = p.Name
	}

	o.io.Println()
	o.io.Info("Testing endpoint: %s", name)
	o.io.Println(fmt.Sprintf("Parameters: [%s]", strings.Join(params, ", ")))

	collector := invoke.Collector{IO: o.io, Hints: o.hints(), Now: o.now}

	inv, err := collector.Collect(ctx, e)
	if err != nil {
		return err
	}

	o.io.Println()
	o.io.Info("Executing: %s", inv.Call())

	rec := invoke.Invoke(ctx, client, inv)
	o.logRecord(rec)

	if rec.Err != nil {
		o.showFailure(rec)

		show, err := o.io.Confirm(ctx, "Show full error chain?", false)
		if err != nil {
			return err
		}

		if show {
			for _, line := range rec.Chain() {
				o.io.Println("  " + line)
			}
		}

		return nil
	}

	if summary := o.showResult(rec); summary.Shape == invoke.Empty {
		return nil
	}

	o.rule()

	save, err := o.io.Confirm(ctx, "💾 Save response to JSON file?", false)
	if err != nil {
		return err
	}

	if save {
		o.saveResponse(ctx, rec)
	}

	return nil
}

//
// showResult prints the request details, the response, and a summary of its shape.
//
func (o *Explorer) showResult(rec invoke.Record) invoke.Summary {
	o.io.Table(console.Table{
		Title:   "Request Details",
		Headers: []string{"Field", "Value"},
		Rows:    rec.RequestInfo().Rows(),
	})

	o.io.Println()
	o.io.Success("Response:")

	summary := invoke.Summarize(rec.Result)

	switch summary.Shape {
	case invoke.Empty:
		o.io.Warn("No response data")
	case invoke.Text:
		o.io.Panel(console.Panel{Title: "Response Data", Body: summary.Text})
	default:
		o.io.JSON(summary.JSON)
	}

	if lines := summary.Lines(); len(lines) > 0 {
		o.io.Println()
		o.io.Info("%s", lines[0])

		for _, line := range lines[1:] {
			o.io.Println(line)
		}
	}

	return summary
}

func (o *Explorer) showFailure(rec invoke.Record) {
	o.io.Println()
	o.io.Error("Error executing %s:", rec.Endpoint)
	o.io.Error("%s", rec.Err)

	if code, ok := rec.APICode(); ok {
		o.io.Error("API error code: %s", code)
	}
}

func (o *Explorer) logRecord(rec invoke.Record) {
	if rec.Err != nil {
		o.sugar.Warnw("endpoint failed", "exchange", rec.Exchange, "endpoint", rec.Endpoint, "took", rec.Duration, "error", rec.Err)

		return
	}

	o.sugar.Infow("endpoint called", "exchange", rec.Exchange, "endpoint", rec.Endpoint, "took", rec.Duration)
}
