package collections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"go.uber.org/zap"

	"estimateboard/estimate"
	"estimateboard/loader"
)

// Seed fetches a document from src and stores it as an estimates record unless
// one with the same estimate_id already exists. The document is validated
// before anything is written.
func Seed(ctx context.Context, app core.App, src loader.Source, logger *zap.Logger) (*core.Record, error) {
	raw, doc, err := loader.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	if doc.EstimateID == "" {
		return nil, &estimate.LoadError{Source: src.String(), Reason: "document has no estimate_id"}
	}

	existing, err := app.FindFirstRecordByData(loader.CollectionEstimates, loader.FieldEstimateID, doc.EstimateID)
	if err == nil {
		logger.Info("estimate already seeded, skipping",
			zap.String("estimate_id", doc.EstimateID),
			zap.String("record", existing.Id))
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lookup estimate %s: %w", doc.EstimateID, err)
	}

	col, err := app.FindCollectionByNameOrId(loader.CollectionEstimates)
	if err != nil {
		return nil, fmt.Errorf("find estimates collection: %w", err)
	}

	record := core.NewRecord(col)
	record.Set(loader.FieldEstimateID, doc.EstimateID)
	record.Set(loader.FieldTitle, "Estimate #"+doc.EstimateID)
	record.Set(loader.FieldDocument, types.JSONRaw(raw))

	if err := app.Save(record); err != nil {
		return nil, fmt.Errorf("save estimate %s: %w", doc.EstimateID, err)
	}

	logger.Info("seeded estimate",
		zap.String("estimate_id", doc.EstimateID),
		zap.String("source", src.String()),
		zap.Int("sections", len(doc.Sections)))
	return record, nil
}

// FirstEstimateID returns the estimate_id of the oldest stored estimate.
func FirstEstimateID(app core.App) (string, error) {
	records, err := app.FindRecordsByFilter(loader.CollectionEstimates, "id != ''", "created", 1, 0)
	if err != nil {
		return "", fmt.Errorf("list estimates: %w", err)
	}
	if len(records) == 0 {
		return "", sql.ErrNoRows
	}
	return records[0].GetString(loader.FieldEstimateID), nil
}
