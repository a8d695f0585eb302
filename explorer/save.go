package explorer

import (
	"context"

	"github.com/lukehollenback/exprobe/invoke"
	"github.com/lukehollenback/exprobe/writer"
)

func (o *Explorer) saveResponse(ctx context.Context, rec invoke.Record) {
	saved, err := o.writer.WriteResponse(ctx, rec.Exchange, rec.Endpoint, rec.RequestInfo(), rec.Result)
	if err != nil {
		o.io.Error("❌ Error saving response to file: %s", err)
		o.io.Warn("Response data was not saved")

		return
	}

	o.io.Success("✅ Response saved to: %s", saved.Path)
	o.io.Info("File contains both request context and response data")
	o.reportSize(saved)
}

//
// reportSize prints the size of a saved file, warning about large ones, and whether it was archived.
//
func (o *Explorer) reportSize(saved writer.Saved) {
	if saved.Large() {
		o.io.Warn("⚠️  File size: %s", saved.SizeLabel())
	} else {
		o.io.Info("File size: %s", saved.SizeLabel())
	}

	if saved.Archived {
		o.io.Info("A copy was archived to MongoDB")
	} else if saved.ArchiveErr != nil {
		o.io.Warn("Could not archive a copy: %s", saved.ArchiveErr)
	}
}
