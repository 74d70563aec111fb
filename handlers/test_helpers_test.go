package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"estimateboard/estimate"
	"estimateboard/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// newSeededSessions boots a test app holding testhelpers.SampleDocument under
// estimate_id "1001".
func newSeededSessions(t *testing.T) (*pocketbase.PocketBase, *Sessions) {
	t.Helper()
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestEstimate(t, app, "1001", testhelpers.SampleDocument)
	return app, NewSessions(app, estimate.DefaultUndoDepth, zap.NewNop())
}

// estimateRequest builds a request with the estimate, section and item path
// values set; empty ids are left unset.
func estimateRequest(method, target, body, estimateID, sectionID, itemID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if estimateID != "" {
		req.SetPathValue("id", estimateID)
	}
	if sectionID != "" {
		req.SetPathValue("sectionId", sectionID)
	}
	if itemID != "" {
		req.SetPathValue("itemId", itemID)
	}
	return req
}

// serve runs handler against req and returns the recorder.
func serve(t *testing.T, app *pocketbase.PocketBase, handler func(*core.RequestEvent) error, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}
