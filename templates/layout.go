// Package templates renders the estimate board as HTML components for
// PocketBase handlers. Components are plain templ.Components so handlers can
// render either a full page or an HTMX fragment.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and remembers the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// text writes s with HTML escaping.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with the value escaped.
func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

const pageStyle = `
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6f8; color: #212529; }
.estimate-container { max-width: 1100px; margin: 24px auto; padding: 0 16px; }
.estimate-header { display: flex; justify-content: space-between; align-items: center; }
.estimate-actions { display: flex; gap: 8px; align-items: center; }
.grand-total { font-size: 1.2rem; font-weight: 600; }
.section-card { background: #fff; border-radius: 6px; margin: 16px 0; box-shadow: 0 1px 2px rgba(0,0,0,.08); }
.section-header { display: flex; justify-content: space-between; align-items: center; padding: 12px 16px; }
.section-header h2 { font-size: 1.05rem; margin: 0; }
.hide-icon { background: none; border: 0; cursor: pointer; font-size: 1rem; }
.table-container { padding: 0 16px 16px; }
.hide { display: none; }
table { width: 100%; border-collapse: collapse; font-size: .9rem; }
th, td { padding: 6px 8px; border-bottom: 1px solid #e9ecef; text-align: left; }
.text-right { text-align: right; }
.text-center { text-align: center; }
.number-input { width: 90px; text-align: right; }
.error, .no-data { background: #fff; padding: 24px; border-radius: 6px; margin-top: 24px; }
.error { color: #b02a37; }
#toast { position: fixed; right: 16px; bottom: 16px; padding: 10px 14px; border-radius: 4px; color: #fff; display: none; }
#toast.show { display: block; }
#toast.success, #toast.info { background: #198754; }
#toast.error, #toast.warning { background: #b02a37; }
`

const toastScript = `
function showToast(detail) {
  var t = document.getElementById("toast");
  t.textContent = detail.message;
  t.className = "show " + detail.type;
  setTimeout(function () { t.className = ""; }, 3000);
}
document.body.addEventListener("showToast", function (evt) { showToast(evt.detail); });
(function () {
  var m = document.cookie.match(/(?:^|; )flash_toast=([^;]*)/);
  if (!m) return;
  document.cookie = "flash_toast=; Max-Age=0; Path=/";
  try { showToast(JSON.parse(decodeURIComponent(m[1].replace(/\+/g, " ")))); } catch (e) {}
})();
`

// Page wraps body in the HTML document shell.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		h.raw("<title>")
		h.text(title)
		h.raw("</title>")
		h.raw("<script src=\"https://unpkg.com/htmx.org@2.0.4\"></script>")
		h.raw("<style>" + pageStyle + "</style></head><body>")
		h.component(ctx, body)
		h.raw("<div id=\"toast\"></div>")
		h.raw("<script>" + toastScript + "</script>")
		h.raw("</body></html>")
		return h.err
	})
}
