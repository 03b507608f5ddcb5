package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nabungemas/internal/form"
)

var (
	errBadAccept = errors.New("accept must be true or false")
	errBadID     = errors.New("invalid transaction id")
)

// isHTMX reports whether the request came from the page script rather than a
// plain form submission.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// parseTransactionDraft rebuilds the add-transaction draft from posted fields.
func parseTransactionDraft(values url.Values) form.Draft {
	var d form.Draft
	for _, f := range form.Fields {
		d = form.Apply(d, form.Edit{Field: f, Value: sanitizeInput(values.Get(string(f)))})
	}
	return d
}

func parseSavingDraft(values url.Values) form.SavingDraft {
	d := form.ApplySaving(form.SavingDraft{}, form.Edit{Field: form.FieldCategory, Value: sanitizeInput(values.Get(string(form.FieldCategory)))})
	return form.ApplySaving(d, form.Edit{Field: form.FieldTarget, Value: sanitizeInput(values.Get(string(form.FieldTarget)))})
}

// editedField names the input that changed: HX-Trigger-Name first, then the
// "field" form value.
func editedField(r *http.Request) form.Field {
	if name := strings.TrimSpace(r.Header.Get("HX-Trigger-Name")); name != "" {
		return form.Field(name)
	}
	return form.Field(strings.TrimSpace(r.PostForm.Get("field")))
}

func parseAccept(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return false, errBadAccept
}

func parseTransactionID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// sanitizeInput trims and strips control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}
