package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"estimateboard/collections"
	"estimateboard/templates"
)

// HandleHome redirects to the oldest stored estimate, or renders the no-data
// page when there is none.
func HandleHome(app core.App, logger *zap.Logger) func(*core.RequestEvent) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(e *core.RequestEvent) error {
		estimateID, err := collections.FirstEstimateID(app)
		if errors.Is(err, sql.ErrNoRows) {
			return render(e, http.StatusOK, templates.EstimatePage(templates.EstimateViewData{Empty: true}))
		}
		if err != nil {
			logger.Error("home: could not list estimates", zap.Error(err))
			return e.String(http.StatusInternalServerError, "Internal error")
		}
		return e.Redirect(http.StatusFound, templates.EstimatePath(estimateID))
	}
}
