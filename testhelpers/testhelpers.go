// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"go.uber.org/zap"

	"estimateboard/collections"
	"estimateboard/loader"
)

// SampleDocument is a two-section estimate. Section 1 totals 281.00
// (2 × 10.50 + 4 × 65.00) and section 2 totals 586.80 (120 × 4.89).
const SampleDocument = `{
	"data": {
		"estimate_id": "1001",
		"sections": [
			{
				"section_id": 1,
				"section_name": "Site Work",
				"items": [
					{"item_id": 11, "item_type_name": "Material", "source_name": "Gravel", "quantity": "2", "unit_cost": 1050, "unit": "Ton", "apply_global_tax": "0", "cost_code": "01-100"},
					{"item_id": 12, "item_type_name": "Labor", "source_name": "Grading", "quantity": "4", "unit_cost": 6500, "unit": "Hour", "apply_global_tax": "1", "cost_code": "01-200"}
				]
			},
			{
				"section_id": 2,
				"section_name": "Framing",
				"items": [
					{"item_id": 21, "item_type_name": "Material", "source_name": "Studs", "quantity": "120", "unit_cost": 489, "unit": "Each", "apply_global_tax": "0", "cost_code": "06-100"}
				]
			}
		]
	}
}`

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	if err := collections.Setup(app, zap.NewNop()); err != nil {
		t.Fatalf("failed to set up collections: %v", err)
	}

	return app
}

// CreateTestEstimate stores a raw document under the given estimate_id and
// returns the record. The document is not validated.
func CreateTestEstimate(t *testing.T, app *pocketbase.PocketBase, estimateID, document string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(loader.CollectionEstimates)
	if err != nil {
		t.Fatalf("failed to find estimates collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set(loader.FieldEstimateID, estimateID)
	record.Set(loader.FieldTitle, "Estimate #"+estimateID)
	record.Set(loader.FieldDocument, types.JSONRaw(document))

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test estimate: %v", err)
	}

	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHTMLNotContains checks that body contains none of the fragments.
func AssertHTMLNotContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if strings.Contains(body, frag) {
			t.Errorf("expected HTML not to contain %q\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
