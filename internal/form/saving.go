package form

import (
	"fmt"
	"strings"

	"nabungemas/internal/core"
)

const (
	FieldCategory Field = "category"
	FieldTarget   Field = "target"
)

// SavingDraft backs the add-saving form.
type SavingDraft struct {
	Category string
	Target   string
}

// ApplySaving returns a copy of d with exactly the edited field replaced.
func ApplySaving(d SavingDraft, e Edit) SavingDraft {
	switch e.Field {
	case FieldCategory:
		d.Category = e.Value
	case FieldTarget:
		d.Target = e.Value
	}
	return d
}

// ValidSaving reports whether d names a category and a parseable target.
func ValidSaving(d SavingDraft) bool {
	_, err := d.ToSaving()
	return err == nil
}

// ToSaving converts d into a goal with no savings recorded yet.
func (d SavingDraft) ToSaving() (core.Saving, error) {
	target, err := core.ParseRupiah(d.Target)
	if err != nil {
		return core.Saving{}, fmt.Errorf("invalid saving draft: %w", core.ErrInvalidTarget)
	}
	s := core.Saving{Category: strings.TrimSpace(d.Category), Target: target}
	if err := s.Validate(); err != nil {
		return core.Saving{}, fmt.Errorf("invalid saving draft: %w", err)
	}
	return s, nil
}
