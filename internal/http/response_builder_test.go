package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusCreated).
		BodyHTML([]byte("test")).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerSavingsChanged().
		TriggerTransactionsChanged().
		Redirect("/transactions").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	for _, part := range []string{`"savings:changed"`, `"transactions:changed"`} {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
	if w.Header().Get("HX-Redirect") != "/transactions" {
		t.Errorf("HX-Redirect = %q", w.Header().Get("HX-Redirect"))
	}
}

func TestHTMXResponseBuilder_NoTriggerHeaderWhenEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().BodyHTML([]byte("<p>x</p>")).Write(w)

	if _, ok := w.Header()["Hx-Trigger"]; ok {
		t.Errorf("unexpected HX-Trigger header")
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *HTMXResponseBuilder
		code    int
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest},
		{"not found", NotFoundError("missing"), http.StatusNotFound},
		{"conflict", ConflictError("busy"), http.StatusConflict},
		{"internal", InternalServerError("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.code {
				t.Errorf("status = %d, want %d", w.Code, tt.code)
			}
			if !strings.Contains(w.Body.String(), `class="error"`) {
				t.Errorf("body = %q", w.Body.String())
			}
		})
	}
}

func TestErrorResponseEscapesMessage(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequestError("<script>").Write(w)
	if strings.Contains(w.Body.String(), "<script>") {
		t.Errorf("message not escaped: %s", w.Body.String())
	}
}
