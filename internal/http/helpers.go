package http

import (
	"fmt"
	"hash/fnv"
	"html/template"
	"net/url"
	"strings"
	"time"

	"nabungemas/internal/core"
	"nabungemas/internal/presenter"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"savingRow":      presenter.NewSavingRow,
		"transactionRow": presenter.NewTransactionRow,
		"pathEscape":     url.PathEscape,
		"domID":          domID,
		"dateInput":      dateInputValue,
	}
}

// domID turns a row key into something usable as an HTML id. The slug keeps
// ids readable and the hash suffix separates keys that share a slug.
func domID(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return fmt.Sprintf("%s-%08x", b.String(), h.Sum32())
}

// dateInputValue converts a draft date into the yyyy-mm-dd form a date input
// expects. Unparseable text yields "".
func dateInputValue(s string) string {
	day, err := core.NormalizeDay(s)
	if err != nil {
		return ""
	}
	t, err := time.Parse(core.DayLayout, day)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// categoryOptions lists the seeded categories followed by any saving that is
// not seeded, without repeats.
func categoryOptions(seeded []string, savings []core.Saving) []string {
	seen := make(map[string]bool, len(seeded)+len(savings))
	out := make([]string, 0, len(seeded)+len(savings))
	add := func(v string) {
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}
	for _, c := range seeded {
		add(c)
	}
	for _, s := range savings {
		add(s.Category)
	}
	return out
}
