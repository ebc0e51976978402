package flowdef

import (
	"context"
	"fmt"
	"regexp"

	"github.com/passage-cli/passage/internal/domain/wizard"
	"github.com/passage-cli/passage/internal/validation"
)

// Build compiles the definition into wizard steps. Each step's validator
// checks the step's declared field constraints against the shared data bag.
func (d *Definition) Build() []wizard.Step {
	steps := make([]wizard.Step, 0, len(d.Steps))
	for _, sd := range d.Steps {
		steps = append(steps, wizard.Step{
			ID:          sd.ID,
			Title:       sd.Title,
			Description: sd.Description,
			Optional:    sd.Optional,
			Disabled:    sd.Disabled,
			Validate:    buildValidator(sd.Fields),
		})
	}
	return steps
}

// Defaults returns the declared field defaults across all steps, keyed by
// field key. Used to seed headless runs.
func (d *Definition) Defaults() map[string]any {
	out := make(map[string]any)
	for _, step := range d.Steps {
		for _, field := range step.Fields {
			if field.Default != "" {
				out[field.Key] = field.Default
			}
		}
	}
	return out
}

func buildValidator(fields []FieldDef) wizard.ValidateFunc {
	if len(fields) == 0 {
		return nil
	}
	// Patterns are pre-validated at parse time.
	patterns := make(map[string]*regexp.Regexp)
	for _, f := range fields {
		if f.Pattern != "" {
			patterns[f.Key] = regexp.MustCompile(f.Pattern)
		}
	}

	return func(ctx context.Context, data map[string]any) wizard.Result {
		for _, f := range fields {
			if err := ctx.Err(); err != nil {
				return wizard.Invalid(err.Error())
			}
			if msg := checkConstraints(f, patterns[f.Key], data); msg != "" {
				return wizard.Invalid(msg)
			}
		}
		return wizard.Valid()
	}
}

func checkConstraints(f FieldDef, re *regexp.Regexp, data map[string]any) string {
	label := f.Label
	if label == "" {
		label = f.Key
	}

	value, present := data[f.Key]
	if f.Required {
		if err := validation.Required(value); err != nil {
			return fmt.Sprintf("%s: %v", label, err)
		}
	}
	if !present || validation.Required(value) != nil {
		// Absent optional fields skip the remaining constraints.
		return ""
	}

	if re != nil {
		if err := validation.Pattern(value, re); err != nil {
			return fmt.Sprintf("%s: %v", label, err)
		}
	}
	if f.MinLen > 0 || f.MaxLen > 0 {
		if err := validation.Length(value, f.MinLen, f.MaxLen); err != nil {
			return fmt.Sprintf("%s: %v", label, err)
		}
	}
	if f.Min != nil || f.Max != nil {
		if err := validation.Range(value, f.Min, f.Max); err != nil {
			return fmt.Sprintf("%s: %v", label, err)
		}
	}
	if f.Kind == KindSelect {
		if err := validation.OneOf(value, f.Options); err != nil {
			return fmt.Sprintf("%s: %v", label, err)
		}
	}
	return ""
}
