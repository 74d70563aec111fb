package handlers

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"estimateboard/estimate"
	"estimateboard/services"
	"estimateboard/templates"
)

// buildViewData converts the current state of a store into template data.
// estimateID is the routing key, which links are built from.
func buildViewData(estimateID string, store *estimate.Store) templates.EstimateViewData {
	doc := store.Document()
	totals := store.Totals()

	title := "Estimate #" + doc.EstimateID
	if doc.EstimateID == "" {
		title = "Estimate #" + estimateID
	}
	data := templates.EstimateViewData{
		EstimateID: estimateID,
		Title:      title,
		GrandTotal: services.FormatCurrency(totals.GrandTotal),
		CanUndo:    store.CanUndo(),
		Sections:   make([]templates.SectionView, 0, len(doc.Sections)),
	}
	for _, s := range doc.Sections {
		data.Sections = append(data.Sections, buildSectionView(s, totals))
	}
	return data
}

func buildSectionView(s estimate.Section, totals estimate.Totals) templates.SectionView {
	view := templates.SectionView{
		ID:        s.ID,
		Name:      s.Name,
		Collapsed: s.Collapsed,
		Total:     services.FormatCurrency(totals.SectionTotals[s.ID]),
		Items:     make([]templates.ItemView, 0, len(s.Items)),
	}
	for _, it := range s.Items {
		view.Items = append(view.Items, templates.ItemView{
			ID:         it.ID,
			TypeName:   it.TypeName,
			SourceName: it.SourceName,
			Quantity:   strconv.FormatFloat(estimate.ParseNumber(it.Quantity), 'f', -1, 64),
			UnitCost:   services.MinorToMajor(it.UnitCost),
			Unit:       it.Unit,
			Total:      services.FormatCurrency(estimate.LineTotal(it)),
			Taxed:      it.ApplyGlobalTax,
			CostCode:   it.CostCode,
		})
	}
	return view
}

// isHTMX reports whether the request came from HTMX and expects a fragment.
func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true"
}

func render(e *core.RequestEvent, status int, c templ.Component) error {
	e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	e.Response.WriteHeader(status)
	return c.Render(e.Request.Context(), e.Response)
}

// handleEstimateError maps core errors to HTTP responses.
func handleEstimateError(e *core.RequestEvent, logger *zap.Logger, op string, err error) error {
	estimateID := e.Request.PathValue("id")
	logger = GetLogger(e.Request, logger)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrorToast(e, http.StatusNotFound, "Estimate not found")
	case estimate.IsNotFound(err):
		return ErrorToast(e, http.StatusNotFound, err.Error())
	case errors.Is(err, estimate.ErrUnknownField):
		return ErrorToast(e, http.StatusBadRequest, err.Error())
	case estimate.IsLoadError(err):
		logger.Error(op, zap.String("estimate_id", estimateID), zap.Error(err))
		if !isHTMX(e) {
			data := templates.EstimateViewData{EstimateID: estimateID, LoadError: err.Error()}
			return render(e, http.StatusBadGateway, templates.EstimatePage(data))
		}
		return ErrorToast(e, http.StatusBadGateway, "Could not load estimate")
	default:
		logger.Error(op, zap.String("estimate_id", estimateID), zap.Error(err))
		return ErrorToast(e, http.StatusInternalServerError, "Internal error")
	}
}

// HandleEstimateView renders the estimate page, or only its content for HTMX
// requests.
func HandleEstimateView(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		if estimateID == "" {
			return e.String(http.StatusBadRequest, "Missing estimate ID")
		}

		var data templates.EstimateViewData
		err := sessions.With(e.Request.Context(), estimateID, func(store *estimate.Store) error {
			data = buildViewData(estimateID, store)
			return nil
		})
		if err != nil {
			return handleEstimateError(e, sessions.Logger(), "estimate_view", err)
		}

		if isHTMX(e) {
			return render(e, http.StatusOK, templates.EstimateContent(data))
		}
		return render(e, http.StatusOK, templates.EstimatePage(data))
	}
}

// itemEdit is one field change decoded from a PATCH form.
type itemEdit struct {
	field string
	value string
}

// itemEditsFromForm maps submitted form fields onto item fields. unit_cost is
// typed in major units and converted; unit_cost_minor is stored as given.
func itemEditsFromForm(form map[string][]string) []itemEdit {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	edits := make([]itemEdit, 0, len(keys))
	for _, k := range keys {
		values := form[k]
		if len(values) == 0 {
			continue
		}
		v := values[len(values)-1]
		switch k {
		case estimate.FieldUnitCost:
			edits = append(edits, itemEdit{field: estimate.FieldUnitCost, value: services.MajorToMinor(v)})
		case "unit_cost_minor":
			edits = append(edits, itemEdit{field: estimate.FieldUnitCost, value: v})
		default:
			edits = append(edits, itemEdit{field: k, value: v})
		}
	}
	return edits
}

// applyItemEdits validates every edit against the current document before
// recording any of them, so a request is applied entirely or not at all.
func applyItemEdits(store *estimate.Store, sectionID, itemID string, edits []itemEdit) error {
	doc := store.Document()
	for _, ed := range edits {
		next, _, err := estimate.UpdateItemField(doc, sectionID, itemID, ed.field, ed.value)
		if err != nil {
			return err
		}
		doc = next
	}
	for _, ed := range edits {
		if err := store.UpdateItemField(sectionID, itemID, ed.field, ed.value); err != nil {
			return err
		}
	}
	return nil
}

// HandleItemPatch applies field edits to one item and re-renders its section,
// plus the toolbar out of band so the grand total follows.
func HandleItemPatch(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		sectionID := e.Request.PathValue("sectionId")
		itemID := e.Request.PathValue("itemId")

		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}
		edits := itemEditsFromForm(e.Request.PostForm)
		if len(edits) == 0 {
			return ErrorToast(e, http.StatusBadRequest, "No fields to update")
		}

		var data templates.EstimateViewData
		var section templates.SectionView
		err := sessions.With(e.Request.Context(), estimateID, func(store *estimate.Store) error {
			if err := applyItemEdits(store, sectionID, itemID, edits); err != nil {
				return err
			}
			data = buildViewData(estimateID, store)
			s, _ := store.Document().Section(sectionID)
			section = buildSectionView(s, store.Totals())
			return nil
		})
		if err != nil {
			return handleEstimateError(e, sessions.Logger(), "item_patch", err)
		}

		return render(e, http.StatusOK, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			if err := templates.SectionCard(estimateID, section).Render(ctx, w); err != nil {
				return err
			}
			return templates.EstimateToolbar(data, true).Render(ctx, w)
		}))
	}
}

// HandleSectionToggle flips a section between collapsed and expanded.
func HandleSectionToggle(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		sectionID := e.Request.PathValue("sectionId")

		var section templates.SectionView
		err := sessions.With(e.Request.Context(), estimateID, func(store *estimate.Store) error {
			if err := store.ToggleSection(sectionID); err != nil {
				return err
			}
			s, _ := store.Document().Section(sectionID)
			section = buildSectionView(s, store.Totals())
			return nil
		})
		if err != nil {
			return handleEstimateError(e, sessions.Logger(), "section_toggle", err)
		}

		return render(e, http.StatusOK, templates.SectionCard(estimateID, section))
	}
}

// HandleUndo reverts the last item edit and re-renders the content.
func HandleUndo(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")

		var data templates.EstimateViewData
		var undone bool
		err := sessions.With(e.Request.Context(), estimateID, func(store *estimate.Store) error {
			undone = store.Undo()
			data = buildViewData(estimateID, store)
			return nil
		})
		if err != nil {
			return handleEstimateError(e, sessions.Logger(), "undo", err)
		}

		if undone {
			SetToast(e, "success", "Edit undone")
		} else {
			SetToast(e, "info", "Nothing to undo")
		}
		return render(e, http.StatusOK, templates.EstimateContent(data))
	}
}

// HandleReload discards all edits and reads the stored document again.
func HandleReload(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")

		var data templates.EstimateViewData
		err := sessions.Reload(e.Request.Context(), estimateID, func(store *estimate.Store) error {
			data = buildViewData(estimateID, store)
			return nil
		})
		if err != nil {
			return handleEstimateError(e, sessions.Logger(), "reload", err)
		}

		SetToast(e, "success", "Estimate reloaded")
		return render(e, http.StatusOK, templates.EstimateContent(data))
	}
}

// HandleTotals returns the current totals as JSON.
func HandleTotals(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var totals estimate.Totals
		err := sessions.With(e.Request.Context(), e.Request.PathValue("id"), func(store *estimate.Store) error {
			totals = store.Totals()
			return nil
		})
		if err != nil {
			return handleEstimateError(e, sessions.Logger(), "totals", err)
		}
		return e.JSON(http.StatusOK, totals)
	}
}

// HandleDocument returns the current normalized document as JSON.
func HandleDocument(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var doc estimate.Document
		err := sessions.With(e.Request.Context(), e.Request.PathValue("id"), func(store *estimate.Store) error {
			doc = store.Document()
			return nil
		})
		if err != nil {
			return handleEstimateError(e, sessions.Logger(), "document", err)
		}
		return e.JSON(http.StatusOK, doc)
	}
}
