package explorer

import (
	"context"
	"fmt"

	"github.com/lukehollenback/exprobe/capability"
	"github.com/lukehollenback/exprobe/console"
)

//
// CheckSupported classifies the exchange's capability map, prints one table per category, a summary,
// and the exchange's details, and offers to save the result.
//
func (o *Explorer) CheckSupported(ctx context.Context) error {
	client := o.session.Client()
	if client == nil {
		o.io.Error("No exchange instance available")

		return nil
	}

	o.io.Println()
	o.io.Info("Checking supported endpoints for %s", client.ID())

	has := client.Has()
	if len(has) == 0 {
		o.io.Warn("Exchange doesn't provide capability information")

		return nil
	}

	report := capability.Check(has)

	//
	// One table per category: supported first, then emulated, then everything else.
	//
	for i, c := range capability.Categories {
		entries := report.Entries(i)
		if len(entries) == 0 {
			continue
		}

		rows := make([][]string, len(entries))
		for j, e := range entries {
			rows[j] = []string{e.Name, e.Status.Glyph() + " " + e.Status.String(), e.Status.Note()}
		}

		o.io.Table(console.Table{
			Title:   c.Name + " Endpoints Support Status",
			Headers: []string{"Endpoint", "Status", "Notes"},
			Rows:    rows,
		})
		o.io.Println()
	}

	s := report.Summary

	summary := console.Table{
		Title:   "Support Summary for " + client.ID(),
		Headers: []string{"Status", "Count", "Percentage"},
	}

	if s.TotalChecked > 0 {
		summary.Rows = [][]string{
			{"Fully Supported", fmt.Sprint(s.Supported), fmt.Sprintf("%.1f%%", s.SupportPercentage)},
			{"Emulated", fmt.Sprint(s.Emulated), fmt.Sprintf("%.1f%%", s.EmulatedPercentage)},
			{"Not Supported", fmt.Sprint(s.NotSupported), fmt.Sprintf("%.1f%%", s.NotSupportedPercentage)},
		}
	}

	o.io.Table(summary)

	//
	// Exchange details.
	//
	info := client.Info()

	sandbox := "✗ Not enabled"
	if info.Sandbox {
		sandbox = "✓ Available"
	} else if !info.HasSandbox {
		sandbox = "✗ Not offered"
	}

	o.io.Println()
	o.io.Info("Exchange Information:")
	o.io.Table(console.Table{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Exchange ID", info.ID},
			{"Name", info.Name},
			{"API Version", info.APIVersion},
			{"Rate Limit", fmt.Sprintf("%d ms", info.RateLimit.Milliseconds())},
			{"Sandbox Mode", sandbox},
		},
	})

	o.rule()
	o.io.Info("💾 Save endpoint support information to JSON file?")

	ok, err := o.io.Confirm(ctx, "Save endpoint capabilities data for reference?", false)
	if err != nil || !ok {
		return err
	}

	saved, err := o.writer.WriteCapabilities(ctx, info, has, report)
	if err != nil {
		o.io.Error("❌ Error saving capability info to file: %s", err)
		o.io.Warn("Capability info was not saved")

		return nil
	}

	o.io.Success("✅ Capability info saved to: %s", saved.Path)
	o.io.Info("File contains support status for %d endpoints", s.TotalChecked)
	o.reportSize(saved)

	return nil
}
