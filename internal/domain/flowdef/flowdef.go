// Package flowdef handles parsing and representation of passage YAML flow files.
package flowdef

// Field kinds a step can collect.
const (
	KindText    = "text"
	KindSelect  = "select"
	KindConfirm = "confirm"
)

// Definition represents a parsed flow file.
type Definition struct {
	SourcePath  string    `yaml:"-"`
	Version     string    `yaml:"version"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Steps       []StepDef `yaml:"steps"`
}

// StepDef declares one wizard step and the fields it collects.
type StepDef struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Optional    bool       `yaml:"optional"`
	Disabled    bool       `yaml:"disabled"`
	Fields      []FieldDef `yaml:"fields"`

	line int
}

// Line returns the source line the step was declared on, for error reporting.
func (s StepDef) Line() int { return s.line }

// FieldDef declares a single input field and its constraints.
type FieldDef struct {
	Key         string   `yaml:"key"`
	Label       string   `yaml:"label"`
	Kind        string   `yaml:"kind"`
	Default     string   `yaml:"default"`
	Placeholder string   `yaml:"placeholder"`
	Required    bool     `yaml:"required"`
	Pattern     string   `yaml:"pattern"`
	MinLen      int      `yaml:"minLen"`
	MaxLen      int      `yaml:"maxLen"`
	Min         *float64 `yaml:"min"`
	Max         *float64 `yaml:"max"`
	Options     []string `yaml:"options"`
}

// StepByID returns the step declaration with the given ID.
func (d *Definition) StepByID(id string) (StepDef, bool) {
	for _, s := range d.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return StepDef{}, false
}
