package flowdef

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedMajor is the flow file format major version this build accepts.
const SupportedMajor = "v1"

// ParseError represents a parsing error with location info.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ParseFile parses a single passage YAML flow file.
func ParseFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is user-provided flow file
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data, path)
}

// Parse parses passage YAML content.
func Parse(data []byte, sourcePath string) (*Definition, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{
			Path:    sourcePath,
			Message: fmt.Sprintf("invalid YAML: %v", err),
		}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    1,
			Message: "empty flow file",
		}
	}

	var def Definition
	if err := root.Decode(&def); err != nil {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    root.Content[0].Line,
			Message: fmt.Sprintf("invalid flow: %v", err),
		}
	}
	def.SourcePath = sourcePath

	// Re-walk the step nodes to capture declaration lines.
	if steps := findStepsNode(root.Content[0]); steps != nil {
		for i := range def.Steps {
			if i < len(steps.Content) {
				def.Steps[i].line = steps.Content[i].Line
			}
		}
	}

	if err := validate(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

func findStepsNode(doc *yaml.Node) *yaml.Node {
	if doc == nil || doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(doc.Content)-1; i += 2 {
		if doc.Content[i].Value == "steps" {
			return doc.Content[i+1]
		}
	}
	return nil
}

func validate(def *Definition) error {
	fail := func(line int, format string, args ...any) error {
		return &ParseError{
			Path:    def.SourcePath,
			Line:    line,
			Message: fmt.Sprintf(format, args...),
		}
	}

	if def.Name == "" {
		return fail(1, "flow name is required")
	}
	if err := checkVersion(def); err != nil {
		return err
	}
	if len(def.Steps) == 0 {
		return fail(1, "flow declares no steps")
	}

	seen := make(map[string]bool, len(def.Steps))
	for _, step := range def.Steps {
		if step.ID == "" {
			return fail(step.line, "step is missing an id")
		}
		if seen[step.ID] {
			return fail(step.line, "duplicate step id %q", step.ID)
		}
		seen[step.ID] = true

		for _, field := range step.Fields {
			if err := checkField(def, step, field); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkVersion(def *Definition) error {
	if def.Version == "" {
		return &ParseError{
			Path:    def.SourcePath,
			Line:    1,
			Message: "flow version is required",
		}
	}
	v := def.Version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return &ParseError{
			Path:    def.SourcePath,
			Line:    1,
			Message: fmt.Sprintf("invalid flow version %q", def.Version),
		}
	}
	if semver.Major(v) != SupportedMajor {
		return &ParseError{
			Path:    def.SourcePath,
			Line:    1,
			Message: fmt.Sprintf("unsupported flow version %s (this build supports %s)", def.Version, SupportedMajor),
		}
	}
	return nil
}

func checkField(def *Definition, step StepDef, field FieldDef) error {
	fail := func(format string, args ...any) error {
		return &ParseError{
			Path:    def.SourcePath,
			Line:    step.line,
			Message: fmt.Sprintf("step %q: %s", step.ID, fmt.Sprintf(format, args...)),
		}
	}

	if field.Key == "" {
		return fail("field is missing a key")
	}
	switch field.Kind {
	case "", KindText:
	case KindSelect:
		if len(field.Options) == 0 {
			return fail("select field %q declares no options", field.Key)
		}
	case KindConfirm:
	default:
		return fail("field %q has unknown kind %q", field.Key, field.Kind)
	}
	if field.Pattern != "" {
		if _, err := regexp.Compile(field.Pattern); err != nil {
			return fail("field %q has invalid pattern: %v", field.Key, err)
		}
	}
	if field.MaxLen > 0 && field.MinLen > field.MaxLen {
		return fail("field %q has minLen greater than maxLen", field.Key)
	}
	if field.Min != nil && field.Max != nil && *field.Min > *field.Max {
		return fail("field %q has min greater than max", field.Key)
	}
	return nil
}
