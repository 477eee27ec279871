package testutil

import (
	"context"

	"github.com/OFR-IIASA/message-ix-models/internal/config"
	"github.com/OFR-IIASA/message-ix-models/internal/export"
)

// ExportTestData exports a subset of data from a scenario for testing.
// See the export package for the source scenario and filters.
func ExportTestData(ctx context.Context, c *config.Context) (string, error) {
	return export.TestData(ctx, c)
}
