package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"estimateboard/loader"
)

// documentMaxSize is the largest estimate document the collection accepts.
const documentMaxSize = 8 << 20

// Setup programmatically creates/ensures the estimates collection exists.
// Each record keeps one source document; edits made in the editor are never
// written back.
func Setup(app core.App, logger *zap.Logger) error {
	_, err := ensureCollection(app, logger, loader.CollectionEstimates, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: loader.FieldEstimateID, Required: true})
		c.Fields.Add(&core.TextField{Name: loader.FieldTitle, Required: false})
		c.Fields.Add(&core.JSONField{Name: loader.FieldDocument, Required: true, MaxSize: documentMaxSize})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_estimates_estimate_id", true, loader.FieldEstimateID, "")
	})
	return err
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app core.App, logger *zap.Logger, name string, addFields func(*core.Collection)) (*core.Collection, error) {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		logger.Debug("collection already exists, skipping creation", zap.String("collection", name))
		return existing, nil
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}

	logger.Info("created collection", zap.String("collection", name), zap.String("id", collection.Id))
	return collection, nil
}
