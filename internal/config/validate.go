package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ValidationError points at the config entry that was rejected.
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Field    string
}

func (e *ValidationError) Error() string {
	loc := e.FilePath
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", e.FilePath, e.Line, e.Column)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s %s", loc, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", loc, e.Message)
}

// ValidateYAMLSyntax parses a config file and rejects syntax errors and
// keys update-log does not know, with their line and column.
// A missing or blank file is valid.
func ValidateYAMLSyntax(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		var typeError *yaml.TypeError
		if errors.As(err, &typeError) {
			return &ValidationError{FilePath: filePath, Message: strings.Join(typeError.Errors, "; ")}
		}
		line, column := yamlErrorPosition(err.Error())
		return &ValidationError{FilePath: filePath, Line: line, Column: column, Message: yamlErrorText(err.Error())}
	}

	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return &ValidationError{FilePath: filePath, Line: root.Line, Column: root.Column,
			Message: "top level must be a mapping of settings"}
	}
	return checkKeys(filePath, root, "", knownKeys())
}

// checkKeys walks a mapping node and reports the first unknown key.
func checkKeys(filePath string, node *yaml.Node, prefix string, known map[string]bool) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		key := prefix + keyNode.Value
		if !known[key] {
			return &ValidationError{
				FilePath: filePath,
				Line:     keyNode.Line,
				Column:   keyNode.Column,
				Field:    key,
				Message:  "is not a setting (known: " + strings.Join(sortedKeys(known), ", ") + ")",
			}
		}
		if valueNode.Kind == yaml.MappingNode {
			if err := checkKeys(filePath, valueNode, key+".", known); err != nil {
				return err
			}
		}
	}
	return nil
}

// knownKeys flattens the defaults into dotted keys, sections included.
func knownKeys() map[string]bool {
	keys := make(map[string]bool)
	var walk func(prefix string, m map[string]interface{})
	walk = func(prefix string, m map[string]interface{}) {
		for k, v := range m {
			keys[prefix+k] = true
			if sub, ok := v.(map[string]interface{}); ok {
				walk(prefix+k+".", sub)
			}
		}
	}
	walk("", GetDefaults())
	return keys
}

func sortedKeys(known map[string]bool) []string {
	keys := make([]string, 0, len(known))
	for k := range known {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidateConfigValues checks the merged configuration: struct tag rules
// first, then the rules that tie values to the changelog format.
func ValidateConfigValues(cfg *Configuration, filePath string) error {
	if err := newValidator().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fieldErr := fieldErrs[0]
			return &ValidationError{
				FilePath: filePath,
				Field:    configKey(fieldErr),
				Message:  describeTag(fieldErr),
			}
		}
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}

	if msg := checkMarker(cfg.Marker); msg != "" {
		return &ValidationError{FilePath: filePath, Field: "marker", Message: msg}
	}
	if msg := checkDateFormat(cfg.Git.DateFormat); msg != "" {
		return &ValidationError{FilePath: filePath, Field: "git.date_format", Message: msg}
	}
	return nil
}

// checkMarker requires a single Markdown table row, since rows are
// inserted directly beneath it.
func checkMarker(marker string) string {
	trimmed := strings.TrimSpace(marker)
	switch {
	case strings.ContainsAny(marker, "\r\n"):
		return "must be a single line"
	case len(trimmed) < 2 || !strings.HasPrefix(trimmed, "|") || !strings.HasSuffix(trimmed, "|"):
		return "must be a table header row starting and ending with \"|\""
	}
	return ""
}

// checkDateFormat rejects layouts without any time element, which would
// stamp every row with the same literal text.
func checkDateFormat(layout string) string {
	ref := time.Date(2001, time.February, 3, 4, 5, 6, 0, time.UTC)
	if ref.Format(layout) == layout {
		return "must be a Go time layout such as 2006-01-02"
	}
	return ""
}

// newValidator reports fields by their koanf keys.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("koanf"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// configKey turns "Configuration.git.hash_length" into "git.hash_length".
func configKey(fieldErr validator.FieldError) string {
	ns := fieldErr.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describeTag(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fieldErr.Tag())
	}
}

// yamlErrorPosition extracts the position from errors such as
// "yaml: line 5: could not find expected ':'". Returns 0, 0 if absent.
func yamlErrorPosition(msg string) (line, column int) {
	var l, c int
	if n, _ := fmt.Sscanf(msg, "yaml: line %d: column %d:", &l, &c); n == 2 {
		return l, c
	}
	if n, _ := fmt.Sscanf(msg, "yaml: line %d:", &l); n == 1 {
		return l, 1
	}
	return 0, 0
}

// yamlErrorText drops the "yaml: line N:" prefix.
func yamlErrorText(msg string) string {
	if !strings.HasPrefix(msg, "yaml:") {
		return msg
	}
	if i := strings.LastIndex(msg, ": "); i > 0 {
		return msg[i+2:]
	}
	return msg
}
