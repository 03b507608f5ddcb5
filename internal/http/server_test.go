package http

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"nabungemas/internal/catalog"
	"nabungemas/internal/log"
	"nabungemas/internal/store/memory"
	"nabungemas/internal/viewmodel"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Format: "text", Output: io.Discard})
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	logger := quietLogger()
	opts.Logger = logger
	if opts.Version == "" {
		opts.Version = "test"
	}
	vm := viewmodel.New(memory.New(), logger)
	srv, err := NewServer(opts, vm, catalog.New([]string{"Haji"}, []string{"Antam", "UBS"}))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func post(t *testing.T, h http.Handler, path string, values url.Values, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func validTransaction(category string) url.Values {
	return url.Values{
		"saving_category": {category},
		"time":            {"2023-01-20"},
		"gold_price":      {"900000"},
		"gold_quantity":   {"10"},
		"product":         {"Antam"},
	}
}

func TestPagesAndHealth(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := get(t, srv.Handler, "/")
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/savings" {
		t.Fatalf("index: status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}

	rr = get(t, srv.Handler, "/savings")
	if rr.Code != http.StatusOK {
		t.Fatalf("savings status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No Data") {
		t.Errorf("empty savings page should show No Data")
	}

	rr = get(t, srv.Handler, "/transactions")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "No Data") {
		t.Errorf("transactions: status=%d", rr.Code)
	}

	rr = get(t, srv.Handler, "/about")
	body := rr.Body.String()
	if rr.Code != http.StatusOK || !strings.Contains(body, "Nabung Emas") || !strings.Contains(body, "Version test") {
		t.Errorf("about: status=%d body=%s", rr.Code, body)
	}

	for path, want := range map[string]string{"/healthz": "ok", "/readyz": "ready"} {
		rr := get(t, srv.Handler, path)
		if rr.Code != http.StatusOK || rr.Body.String() != want {
			t.Errorf("%s: status=%d body=%q", path, rr.Code, rr.Body.String())
		}
	}
}

func TestResponsesCarrySecurityHeadersAndRequestID(t *testing.T) {
	srv := newTestServer(t, Options{})
	rr := get(t, srv.Handler, "/savings")

	if csp := rr.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "script-src 'self'") {
		t.Errorf("CSP = %q", csp)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Errorf("missing X-Request-ID")
	}
}

func TestStaticAssetsServed(t *testing.T) {
	srv := newTestServer(t, Options{})
	for _, path := range []string{"/static/app.js", "/static/app.css"} {
		rr := get(t, srv.Handler, path)
		if rr.Code != http.StatusOK {
			t.Errorf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("Cache-Control") == "" {
			t.Errorf("%s missing Cache-Control", path)
		}
	}
}

func TestPagesLoadVendoredHTMX(t *testing.T) {
	srv := newTestServer(t, Options{})

	body := get(t, srv.Handler, "/savings").Body.String()
	for _, want := range []string{
		`src="/static/vendor/htmx.min.js"`,
		`src="/static/vendor/htmx-ext-sse.js"`,
		`sse-connect="/events"`,
		`hx-post="/savings"`,
		`hx-trigger="savings:changed from:body, sse:savings"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("savings page missing %s", want)
		}
	}
	if strings.Contains(body, "unpkg.com") {
		t.Error("pages must not load scripts from another origin")
	}

	form := get(t, srv.Handler, "/transactions/new").Body.String()
	if !strings.Contains(form, `hx-post="/ui/transaction-form"`) || !strings.Contains(form, `hx-sync="this:replace"`) {
		t.Errorf("transaction form is not wired to the field reducer:\n%s", form)
	}
}

func TestShutdownLogsRequestCounters(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Format: "text", Output: &buf})
	srv, err := NewServer(Options{Logger: logger, RateLimitPerMinute: 1},
		viewmodel.New(memory.New(), quietLogger()), catalog.New(nil, nil))
	if err != nil {
		t.Fatal(err)
	}

	get(t, srv.Handler, "/healthz")
	for i := 0; i < 2; i++ {
		post(t, srv.Handler, "/savings", url.Values{"category": {"Haji"}, "target": {"1"}}, false)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"HTTP server stopping", "requests=3", "rate_limited=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("shutdown log missing %q:\n%s", want, out)
		}
	}
}

func TestCreateSaving(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := post(t, srv.Handler, "/savings", url.Values{"category": {"Haji"}, "target": {"abc"}}, false)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid target: expected 422, got %d", rr.Code)
	}

	rr = post(t, srv.Handler, "/savings", url.Values{"category": {"Haji"}, "target": {"90000000"}}, false)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}

	rr = post(t, srv.Handler, "/savings", url.Values{"category": {"Mobil"}, "target": {"1000"}}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("htmx create: status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), EventSavingsChanged) {
		t.Errorf("HX-Trigger = %q", rr.Header().Get("HX-Trigger"))
	}
	if !strings.Contains(rr.Body.String(), `id="saving-form"`) {
		t.Errorf("htmx create should return a fresh form")
	}

	body := get(t, srv.Handler, "/ui/savings").Body.String()
	for _, want := range []string{"Haji", "Target: Rp90.000.000", "Total Saving: Rp0", "0.0%", "Mobil"} {
		if !strings.Contains(body, want) {
			t.Errorf("saving list missing %q", want)
		}
	}
	if strings.Index(body, "Haji") > strings.Index(body, "Mobil") {
		t.Errorf("savings should keep insertion order")
	}
}

func TestCreateTransactionUpdatesSaving(t *testing.T) {
	srv := newTestServer(t, Options{})
	post(t, srv.Handler, "/savings", url.Values{"category": {"Haji"}, "target": {"90000000"}}, false)

	bad := validTransaction("Haji")
	bad.Set("gold_quantity", "")
	rr := post(t, srv.Handler, "/transactions", bad, true)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `type="submit" disabled`) {
		t.Errorf("invalid draft should render a disabled save button")
	}

	rr = post(t, srv.Handler, "/transactions", validTransaction("Haji"), true)
	if rr.Code != http.StatusOK {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("HX-Redirect") != "/transactions" {
		t.Errorf("HX-Redirect = %q", rr.Header().Get("HX-Redirect"))
	}

	savings := get(t, srv.Handler, "/ui/savings").Body.String()
	if !strings.Contains(savings, "Total Saving: Rp9.000.000") || !strings.Contains(savings, "10.0%") {
		t.Errorf("saving not updated: %s", savings)
	}
	txs := get(t, srv.Handler, "/ui/transactions").Body.String()
	for _, want := range []string{"20 Jan 2023", "Rp900.000", "10.0 gr", "Antam", "Rp9.000.000"} {
		if !strings.Contains(txs, want) {
			t.Errorf("transaction list missing %q", want)
		}
	}
}

func TestTransactionForNewCategoryCreatesSaving(t *testing.T) {
	srv := newTestServer(t, Options{})
	if rr := post(t, srv.Handler, "/transactions", validTransaction("Rumah"), false); rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	body := get(t, srv.Handler, "/ui/savings").Body.String()
	if !strings.Contains(body, "Rumah") || !strings.Contains(body, "Target: Rp0") {
		t.Errorf("expected a zero-target saving for Rumah: %s", body)
	}
}

func TestTransactionFormEditTogglesSave(t *testing.T) {
	srv := newTestServer(t, Options{})

	partial := validTransaction("Haji")
	partial.Del("product")
	req := httptest.NewRequest(http.MethodPost, "/ui/transaction-form", strings.NewReader(partial.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Trigger-Name", "gold_quantity")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `type="submit" disabled`) {
		t.Fatalf("incomplete draft: status=%d", rr.Code)
	}

	full := validTransaction("Haji")
	full.Set("field", "product")
	rr = post(t, srv.Handler, "/ui/transaction-form", full, true)
	body := rr.Body.String()
	if strings.Contains(body, `type="submit" disabled`) {
		t.Errorf("complete draft should enable save")
	}
	if !strings.Contains(body, `value="2023-01-20"`) {
		t.Errorf("date input should keep the picked day")
	}
}

func TestNewTransactionPreselectsCategory(t *testing.T) {
	srv := newTestServer(t, Options{})
	rr := get(t, srv.Handler, "/transactions/new?saving_category=Haji")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `name="saving_category" list="transaction-category-options" value="Haji"`) {
		t.Errorf("category not preselected")
	}
}

func TestDeleteSavingConfirmFlow(t *testing.T) {
	srv := newTestServer(t, Options{})
	post(t, srv.Handler, "/savings", url.Values{"category": {"Tabungan Rumah"}, "target": {"1000"}}, false)
	const base = "/savings/Tabungan%20Rumah"

	rr := post(t, srv.Handler, base+"/confirm", url.Values{"accept": {"true"}}, true)
	if rr.Code != http.StatusConflict {
		t.Fatalf("confirm without request: expected 409, got %d", rr.Code)
	}

	if rr := post(t, srv.Handler, "/savings/Nope/delete", nil, true); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown saving: expected 404, got %d", rr.Code)
	}

	rr = post(t, srv.Handler, base+"/delete", nil, true)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "alertdialog") {
		t.Fatalf("delete request should open the dialog: status=%d", rr.Code)
	}

	rr = post(t, srv.Handler, base+"/confirm", url.Values{"accept": {"false"}}, true)
	if rr.Code != http.StatusOK || strings.Contains(rr.Body.String(), "alertdialog") {
		t.Fatalf("decline should close the dialog: status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Tabungan Rumah") {
		t.Fatalf("decline must keep the saving")
	}

	post(t, srv.Handler, base+"/delete", nil, true)
	rr = post(t, srv.Handler, base+"/confirm", url.Values{"accept": {"true"}}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("accept status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No Data") {
		t.Errorf("saving should be gone: %s", rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), EventSavingsChanged) {
		t.Errorf("accept should announce the change")
	}

	rr = post(t, srv.Handler, base+"/confirm", url.Values{"accept": {"maybe"}}, true)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad accept: expected 400, got %d", rr.Code)
	}
}

func TestDeleteTransactionRestoresTotal(t *testing.T) {
	srv := newTestServer(t, Options{})
	post(t, srv.Handler, "/transactions", validTransaction("Haji"), false)

	if rr := post(t, srv.Handler, "/transactions/abc/delete", nil, true); rr.Code != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d", rr.Code)
	}
	if rr := post(t, srv.Handler, "/transactions/99/delete", nil, true); rr.Code != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", rr.Code)
	}

	rr := post(t, srv.Handler, "/transactions/1/delete", nil, false)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("plain delete request: expected 303, got %d", rr.Code)
	}
	if !strings.Contains(get(t, srv.Handler, "/ui/transactions").Body.String(), "alertdialog") {
		t.Fatalf("dialog should be open after the redirect")
	}

	rr = post(t, srv.Handler, "/transactions/1/confirm", url.Values{"accept": {"true"}}, true)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "No Data") {
		t.Fatalf("accept: status=%d body=%s", rr.Code, rr.Body.String())
	}
	savings := get(t, srv.Handler, "/ui/savings").Body.String()
	if !strings.Contains(savings, "Total Saving: Rp0") {
		t.Errorf("total should drop back to zero: %s", savings)
	}
}

func TestMutationsAreRateLimited(t *testing.T) {
	srv := newTestServer(t, Options{RateLimitPerMinute: 1})
	values := url.Values{"category": {"Haji"}, "target": {"1000"}}

	if rr := post(t, srv.Handler, "/savings", values, false); rr.Code != http.StatusSeeOther {
		t.Fatalf("first post: %d", rr.Code)
	}
	rr := post(t, srv.Handler, "/savings", values, false)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rr.Header().Get("Retry-After"))
	}

	for i := 0; i < 3; i++ {
		if rr := post(t, srv.Handler, "/ui/transaction-form", validTransaction("Haji"), true); rr.Code != http.StatusOK {
			t.Fatalf("form edits must not be limited, got %d", rr.Code)
		}
	}
}

func TestEventsStreamAnnouncesChanges(t *testing.T) {
	srv := newTestServer(t, Options{})
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer res.Body.Close()
	if ct := res.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	lines := bufio.NewScanner(res.Body)
	seen := map[string]bool{}
	for !(seen["savings"] && seen["transactions"]) && lines.Scan() {
		if name, ok := strings.CutPrefix(lines.Text(), "event: "); ok {
			seen[name] = true
		}
	}
	if !seen["savings"] || !seen["transactions"] {
		t.Fatalf("expected initial events, saw %v", seen)
	}

	post(t, srv.Handler, "/savings", url.Values{"category": {"Haji"}, "target": {"1000"}}, false)
	for lines.Scan() {
		if lines.Text() == `data: {"count":1}` {
			return
		}
	}
	t.Fatalf("no event after creating a saving: %v", lines.Err())
}
