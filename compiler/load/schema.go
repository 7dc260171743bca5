// Package load turns layout metadata reported by the FileMaker Data API
// into the schema model the generator emits code from.
package load

import (
	"fmt"
	"slices"
	"sort"

	"github.com/syssam/fmgen/fmdapi"
)

// Kind classifies a field.
type Kind uint8

// Field kinds.
const (
	KindText Kind = iota
	KindNumber
	KindValueList
)

var kindNames = [...]string{
	KindText:      "text",
	KindNumber:    "numeric",
	KindValueList: "valueList",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ValueListPolicy controls how value-list-bound fields are typed.
type ValueListPolicy string

// Value list policies.
const (
	// PolicyStrict types the field as the list's literal set.
	PolicyStrict ValueListPolicy = "strict"
	// PolicyAllowEmpty is PolicyStrict widened with the empty string.
	PolicyAllowEmpty ValueListPolicy = "allowEmpty"
	// PolicyIgnore types the field by its result type only.
	PolicyIgnore ValueListPolicy = "ignore"
)

// ParsePolicy parses a policy name. The empty string yields PolicyIgnore.
func ParsePolicy(s string) (ValueListPolicy, error) {
	switch p := ValueListPolicy(s); p {
	case "":
		return PolicyIgnore, nil
	case PolicyStrict, PolicyAllowEmpty, PolicyIgnore:
		return p, nil
	}
	return "", fmt.Errorf("load: unknown value list policy %q (want strict, allowEmpty or ignore)", s)
}

// Field is one entry of a reduced schema.
type Field struct {
	Name   string   `json:"name"`
	Kind   Kind     `json:"kind"`
	Values []string `json:"values,omitempty"`
}

// Relation is a portal reduced to its fields.
type Relation struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// ValueList is a named literal set.
type ValueList struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Layout is the reduced schema of one layout.
type Layout struct {
	Name       string      `json:"name"`
	Fields     []Field     `json:"fields"`
	Relations  []Relation  `json:"relations,omitempty"`
	ValueLists []ValueList `json:"valueLists,omitempty"`
}

// Reduce maps field descriptors to schema entries, keeping the first
// occurrence of each name. lists is nil when the layout reports no value
// lists at all, which disables enumeration.
func Reduce(fields []fmdapi.FieldMetaData, lists []fmdapi.ValueList, policy ValueListPolicy) []Field {
	out := make([]Field, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, fd := range fields {
		if seen[fd.Name] {
			continue
		}
		seen[fd.Name] = true
		out = append(out, classify(fd, lists, policy))
	}
	return out
}

func classify(fd fmdapi.FieldMetaData, lists []fmdapi.ValueList, policy ValueListPolicy) Field {
	f := Field{Name: fd.Name, Kind: KindText}
	if policy != PolicyIgnore && policy != "" && fd.ValueList != "" && lists != nil {
		f.Kind = KindValueList
		f.Values = []string{}
		if vl, ok := findList(lists, fd.ValueList); ok {
			f.Values = listValues(vl)
		}
		if policy == PolicyAllowEmpty && !slices.Contains(f.Values, "") {
			f.Values = append(f.Values, "")
		}
		return f
	}
	if fd.Result == "number" {
		f.Kind = KindNumber
	}
	return f
}

func findList(lists []fmdapi.ValueList, name string) (fmdapi.ValueList, bool) {
	for _, vl := range lists {
		if vl.Name == name {
			return vl, true
		}
	}
	return fmdapi.ValueList{}, false
}

func listValues(vl fmdapi.ValueList) []string {
	values := make([]string, 0, len(vl.Values))
	for _, v := range vl.Values {
		values = append(values, v.Value)
	}
	return values
}

// ReduceValueLists deduplicates the layout's value lists by name, first wins.
func ReduceValueLists(lists []fmdapi.ValueList) []ValueList {
	out := make([]ValueList, 0, len(lists))
	seen := make(map[string]bool, len(lists))
	for _, vl := range lists {
		if seen[vl.Name] {
			continue
		}
		seen[vl.Name] = true
		out = append(out, ValueList{Name: vl.Name, Values: listValues(vl)})
	}
	return out
}

// ReduceLayout reduces the main fields, every portal and the value lists
// of a layout. Portals are ordered by name.
func ReduceLayout(name string, meta *fmdapi.LayoutMetadata, policy ValueListPolicy) *Layout {
	l := &Layout{
		Name:       name,
		Fields:     Reduce(meta.FieldMetaData, meta.ValueLists, policy),
		ValueLists: ReduceValueLists(meta.ValueLists),
	}
	portals := make([]string, 0, len(meta.PortalMetaData))
	for p := range meta.PortalMetaData {
		portals = append(portals, p)
	}
	sort.Strings(portals)
	for _, p := range portals {
		l.Relations = append(l.Relations, Relation{
			Name:   p,
			Fields: Reduce(meta.PortalMetaData[p], meta.ValueLists, policy),
		})
	}
	return l
}
