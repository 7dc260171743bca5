package gen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/fmgen/compiler/load"
)

// BuildSchemaArgs is the input of one type module.
type BuildSchemaArgs struct {
	SchemaName    string
	Layout        *load.Layout
	StrictNumbers bool
}

// Symbols are the exported names of a type module used by its client.
type Symbols struct {
	Schema    string // sanitized schema name
	Type      string
	Validator string
	Parse     string
	// Portals names are empty when the layout has no portals.
	Portals          string
	PortalsValidator string
	PortalsParse     string
}

// HasPortals reports whether the module declares a portal aggregate.
func (s Symbols) HasPortals() bool { return s.Portals != "" }

// Plan is the ordered declaration list of a type module.
type Plan struct {
	Schema   string
	File     string
	Decls    []Decl
	Symbols  Symbols
	Warnings []*EmissionError
}

// planner builds the declarations of a single schema.
type planner struct {
	args BuildSchemaArgs
	ns   *Namespace
	base string
	plan *Plan
	// unions of emitted value lists, for aliasing fields bound to them.
	lists []*LiteralUnion
	rels  []*ObjectWithValidator
}

// PlanSchema builds the declarations of one schema: relations first, then
// non-empty value lists, the main object and, when there are portals, the
// aggregate. Enum unions of a relation or the main object precede it. ns
// is shared by every module of the output package.
func PlanSchema(args BuildSchemaArgs, ns *Namespace) (*Plan, error) {
	if args.Layout == nil {
		return nil, NewGenerationError("plan", args.SchemaName, "layout is nil", nil)
	}
	if args.SchemaName == "" {
		return nil, NewGenerationError("plan", args.Layout.Name, "schema name is empty", nil)
	}
	p := &planner{
		args: args,
		ns:   ns,
		base: Identifier(args.SchemaName),
		plan: &Plan{Schema: args.SchemaName, File: FileName(args.SchemaName)},
	}
	p.reserve()
	for _, vl := range args.Layout.ValueLists {
		p.valueList(vl)
	}
	for _, rel := range args.Layout.Relations {
		p.relation(rel)
	}
	for _, u := range p.lists {
		p.plan.Decls = append(p.plan.Decls, u)
	}
	p.main()
	p.aggregate()
	return p.plan, nil
}

// reserve takes the fixed names first so that derived names yield to them.
func (p *planner) reserve() {
	s := &p.plan.Symbols
	s.Schema = p.base
	s.Type = p.ns.Take("T" + p.base)
	s.Validator = p.ns.Take("Z" + p.base)
	s.Parse = p.ns.Take("Parse" + p.base)
	if len(p.args.Layout.Relations) > 0 {
		s.Portals = p.ns.Take("T" + p.base + "Portals")
		s.PortalsValidator = p.ns.Take("Z" + p.base + "Portals")
		s.PortalsParse = p.ns.Take("Parse" + p.base + "Portals")
	}
}

func (p *planner) relation(rel load.Relation) {
	base := p.base + Identifier(rel.Name)
	obj := &ObjectWithValidator{
		Name:      p.ns.Take("T" + base),
		Validator: p.ns.Take("Z" + base),
		Object:    rel.Name,
		Doc:       fmt.Sprintf("is a record of the %s portal.", rel.Name),
	}
	obj.Props = p.props(base, rel.Name+"::", rel.Fields)
	p.rels = append(p.rels, obj)
	p.plan.Decls = append(p.plan.Decls, obj)
}

func (p *planner) valueList(vl load.ValueList) {
	if len(vl.Values) == 0 {
		return
	}
	base := p.base + Identifier(vl.Name)
	u := p.union("TVL"+base, "ZVL"+base, vl.Values)
	u.Doc = fmt.Sprintf("holds the values of the %s value list.", vl.Name)
	p.lists = append(p.lists, u)
}

func (p *planner) main() {
	s := p.plan.Symbols
	obj := &ObjectWithValidator{
		Name:      s.Type,
		Validator: s.Validator,
		Parse:     s.Parse,
		Object:    p.args.Layout.Name,
		Doc:       fmt.Sprintf("is the field data of a %s record.", p.args.Layout.Name),
	}
	obj.Props = p.props(p.base, "", p.args.Layout.Fields)
	p.plan.Decls = append(p.plan.Decls, obj)
}

func (p *planner) aggregate() {
	s := p.plan.Symbols
	if !s.HasPortals() {
		return
	}
	agg := &Aggregate{ObjectWithValidator{
		Name:      s.Portals,
		Validator: s.PortalsValidator,
		Parse:     s.PortalsParse,
		Object:    p.args.Layout.Name + " portals",
		Doc:       fmt.Sprintf("is the portal data of a %s record.", p.args.Layout.Name),
	}}
	fields := NewNamespace()
	for i, rel := range p.args.Layout.Relations {
		obj := p.rels[i]
		p.checkTag(rel.Name)
		agg.Props = append(agg.Props, Prop{
			Name:   fields.Take(Identifier(rel.Name)),
			Remote: rel.Name,
			Kind:   RuleList,
			Type:   obj.Name,
			Elem:   obj.Validator,
		})
	}
	p.plan.Decls = append(p.plan.Decls, agg)
}

// props maps schema fields to struct fields. Enum fields declare their own
// union, or alias an emitted value list with the same values. prefix is
// dropped from field names when deriving Go names.
func (p *planner) props(base, prefix string, fields []load.Field) []Prop {
	names := NewNamespace()
	props := make([]Prop, 0, len(fields))
	for _, f := range fields {
		local := f.Name
		if prefix != "" && strings.HasPrefix(local, prefix) && len(local) > len(prefix) {
			local = local[len(prefix):]
		}
		p.checkTag(f.Name)
		prop := Prop{Name: names.Take(Identifier(local)), Remote: f.Name}
		switch f.Kind {
		case load.KindNumber:
			prop.Kind = RuleNumerish
			if p.args.StrictNumbers {
				prop.Kind = RuleStrictNumber
			}
		case load.KindValueList:
			if len(f.Values) == 0 {
				p.plan.Warnings = append(p.plan.Warnings, &EmissionError{
					Schema:  p.args.SchemaName,
					Field:   f.Name,
					Message: "value list has no values, typed as text",
				})
				prop.Kind = RuleString
				break
			}
			prop.Kind = RuleEnum
			prop.Values = f.Values
			prop.Catch = slices.Contains(f.Values, "")
			prop.Type, prop.Elem = p.enum(base+prop.Name, f.Name, f.Values)
		default:
			prop.Kind = RuleString
		}
		props = append(props, prop)
	}
	return props
}

// checkTag warns about names a json struct tag cannot carry. Validators
// decode such fields by position; plain json decoding skips them.
func (p *planner) checkTag(remote string) {
	if _, ok := JSONTag(remote); ok {
		return
	}
	p.plan.Warnings = append(p.plan.Warnings, &EmissionError{
		Schema:  p.args.SchemaName,
		Field:   remote,
		Message: "name cannot be used as a json tag, field is tagged \"-\"",
	})
}

// enum returns the type and validator of an enum field.
func (p *planner) enum(base, field string, values []string) (string, string) {
	for _, l := range p.lists {
		if slices.Equal(l.Values, values) {
			alias := &TypeAlias{
				Name:   p.ns.Take("T" + base),
				Target: l.Name,
				Doc:    fmt.Sprintf("is a value of the %s field.", field),
			}
			p.plan.Decls = append(p.plan.Decls, alias)
			return alias.Name, l.Validator
		}
	}
	u := p.union("T"+base, "Z"+base, values)
	u.Doc = fmt.Sprintf("is a value of the %s field.", field)
	p.plan.Decls = append(p.plan.Decls, u)
	return u.Name, u.Validator
}

func (p *planner) union(name, validator string, values []string) *LiteralUnion {
	u := &LiteralUnion{
		Name:      p.ns.Take(name),
		Validator: p.ns.Take(validator),
		Values:    values,
		Catch:     slices.Contains(values, ""),
	}
	u.ValuesFunc = p.ns.Take(u.Name + "Values")
	consts := NewNamespace()
	for _, v := range values {
		u.Consts = append(u.Consts, p.ns.Take(consts.Take(u.Name+valueIdent(v))))
	}
	return u
}
