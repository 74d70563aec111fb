package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"
)

// TriggerEvent adds an HTMX client event to the HX-Trigger response header.
// Events already in the header are kept; a header that is not a JSON object
// is replaced.
func TriggerEvent(e *core.RequestEvent, name string, payload any) {
	events := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &events); err != nil {
			zap.L().Warn("hx-trigger: existing header is not a JSON object, overwriting",
				zap.String("header", existing), zap.Error(err))
			events = map[string]any{}
		}
		if events == nil {
			events = map[string]any{}
		}
	}
	events[name] = payload

	data, err := json.Marshal(events)
	if err != nil {
		zap.L().Warn("hx-trigger: failed to marshal events", zap.String("event", name), zap.Error(err))
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))
}

// SetToast shows a toast on the client through the showToast HTMX event.
// A short-lived flash cookie carries the same toast across non-HTMX redirects,
// where HX-Trigger is lost.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	toast := map[string]string{"message": message, "type": toastType}
	TriggerEvent(e, "showToast", toast)

	cookieVal, err := json.Marshal(toast)
	if err != nil {
		return
	}
	http.SetCookie(e.Response, &http.Cookie{
		Name:     "flash_toast",
		Value:    url.QueryEscape(string(cookieVal)),
		Path:     "/",
		MaxAge:   10,
		HttpOnly: false, // read and cleared by the page script
		SameSite: http.SameSiteLaxMode,
	})
}

// ErrorToast sets an error toast and prevents HTMX from swapping the error text into the DOM.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}
