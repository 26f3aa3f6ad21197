package models

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrValidationFailed = errors.New("validation failed")

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// Only keeps the messages whose top-level field is one of names. It returns
// nil when nothing is left.
func (e *ValidationError) Only(names ...string) error {
	kept := make(map[string]string)
	for path, msg := range e.Fields {
		top, _, _ := strings.Cut(path, ".")
		for _, name := range names {
			if top == name {
				kept[path] = msg
				break
			}
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return &ValidationError{Fields: kept}
}

var validate = newValidate()

// newValidate reports fields by their json names.
func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the validate tags of s. messages maps a field path such as
// "specifications.engine" to the text reported for it; unmapped fields get a
// generic message.
func Validate(s any, messages map[string]string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var failed validator.ValidationErrors
	if !errors.As(err, &failed) {
		return err
	}
	fields := make(map[string]string, len(failed))
	for _, fe := range failed {
		path := fieldPath(fe.Namespace())
		if _, seen := fields[path]; seen {
			continue
		}
		msg, ok := messages[path]
		if !ok {
			msg = "Invalid value"
		}
		fields[path] = msg
	}
	return &ValidationError{Fields: fields}
}

// fieldPath turns "VehicleInput.features[1]" into "features".
func fieldPath(namespace string) string {
	_, path, _ := strings.Cut(namespace, ".")
	if i := strings.IndexByte(path, '['); i >= 0 {
		path = path[:i]
	}
	return path
}
