package fmtype

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// FieldRule binds a rule to a property name.
type FieldRule struct {
	Name string
	Rule Rule
}

// Field declares a required property of an Object.
func Field(name string, rule Rule) FieldRule {
	return FieldRule{Name: name, Rule: rule}
}

// Object checks a JSON object against declared properties. Undeclared
// properties are dropped.
type Object struct {
	name   string
	fields []FieldRule
}

// NewObject returns an object rule. name is used in error messages only.
func NewObject(name string, fields ...FieldRule) *Object {
	return &Object{name: name, fields: fields}
}

// Name returns the object name.
func (o *Object) Name() string { return o.name }

// Fields returns the declared properties in declaration order.
func (o *Object) Fields() []FieldRule { return append([]FieldRule(nil), o.fields...) }

// Check implements Rule. Every declared property must be present.
func (o *Object) Check(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected object, got %s", o.name, kind(v))
	}
	out := make(map[string]any, len(o.fields))
	var issues Issues
	for _, f := range o.fields {
		value, ok := m[f.Name]
		if !ok {
			issues = append(issues, Issue{Path: f.Name, Message: "required"})
			continue
		}
		checked, err := f.Rule.Check(value)
		if err != nil {
			issues = issues.add(f.Name, err)
			continue
		}
		out[f.Name] = checked
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Object: o.name, Issues: issues}
	}
	return out, nil
}

// Decode checks data and stores the normalized result in the value
// pointed to by out. out is a struct whose exported fields follow the
// declared properties in order, or a map[string]any. Values are assigned by
// position, so struct tags play no part.
func (o *Object) Decode(data map[string]any, out any) error {
	checked, err := o.Check(data)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("fmtype: decode %s: out must be a non-nil pointer, got %T", o.name, out)
	}
	return o.assign(rv.Elem(), checked.(map[string]any))
}

func (o *Object) assign(dst reflect.Value, m map[string]any) error {
	if dst.Kind() == reflect.Map && dst.Type() == reflect.TypeOf(m) {
		dst.Set(reflect.ValueOf(m))
		return nil
	}
	if dst.Kind() != reflect.Struct {
		return fmt.Errorf("fmtype: decode %s: cannot decode into %s", o.name, dst.Type())
	}
	index := exported(dst.Type())
	if len(index) != len(o.fields) {
		return fmt.Errorf("fmtype: decode %s: %s has %d exported fields, want %d",
			o.name, dst.Type(), len(index), len(o.fields))
	}
	for i, f := range o.fields {
		if err := assign(dst.Field(index[i]), m[f.Name], f.Rule); err != nil {
			return fmt.Errorf("fmtype: decode %s field %q: %w", o.name, f.Name, err)
		}
	}
	return nil
}

// assign stores a checked value. Objects and lists recurse so that nested
// rows are assigned by position too; scalars go through encoding/json so
// Numerish and NullNumber decode themselves.
func assign(dst reflect.Value, v any, rule Rule) error {
	switch r := rule.(type) {
	case *Object:
		m, _ := v.(map[string]any)
		return r.assign(dst, m)
	case listRule:
		if dst.Kind() == reflect.Slice {
			items, _ := v.([]any)
			s := reflect.MakeSlice(dst.Type(), len(items), len(items))
			for i, item := range items {
				if err := assign(s.Index(i), item, r.elem); err != nil {
					return fmt.Errorf("%d: %w", i, err)
				}
			}
			dst.Set(s)
			return nil
		}
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, dst.Addr().Interface())
}

func exported(t reflect.Type) []int {
	index := make([]int, 0, t.NumField())
	for i := range t.NumField() {
		if t.Field(i).IsExported() {
			index = append(index, i)
		}
	}
	return index
}

// Issue is one failed check. Path is the dotted property path.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Issues is a list of failed checks.
type Issues []Issue

func (is Issues) add(prefix string, err error) Issues {
	var verr *ValidationError
	if errors.As(err, &verr) {
		for _, nested := range verr.Issues {
			path := prefix
			if nested.Path != "" {
				path += "." + nested.Path
			}
			is = append(is, Issue{Path: path, Message: nested.Message})
		}
		return is
	}
	return append(is, Issue{Path: prefix, Message: err.Error()})
}

// ValidationError reports every failed check of a value.
type ValidationError struct {
	Object string
	Issues Issues
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		if is.Path == "" {
			parts[i] = is.Message
			continue
		}
		parts[i] = is.Path + ": " + is.Message
	}
	msg := strings.Join(parts, "; ")
	if e.Object != "" {
		return "fmtype: invalid " + e.Object + ": " + msg
	}
	return "fmtype: " + msg
}
