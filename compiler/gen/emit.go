package gen

import (
	"fmt"
	"time"

	"github.com/dave/jennifer/jen"
)

// Import paths of the runtime packages referenced by generated code.
const (
	FmtypePkg = "github.com/syssam/fmgen/fmtype"
	FmdapiPkg = "github.com/syssam/fmgen/fmdapi"
)

// Module is a rendered type module.
type Module struct {
	Plan *Plan
	File *jen.File
}

// TypeEmitter renders type modules. One emitter serves one output package.
type TypeEmitter struct {
	cfg *Config
	ns  *Namespace
}

// NewTypeEmitter returns an emitter writing into the package of cfg.
func NewTypeEmitter(cfg *Config) *TypeEmitter {
	return &TypeEmitter{cfg: cfg, ns: NewNamespace()}
}

// Emit plans and renders the type module of one schema. Warnings are
// returned on the plan and do not fail the call.
func (e *TypeEmitter) Emit(args BuildSchemaArgs) (*Module, error) {
	plan, err := PlanSchema(args, e.ns)
	if err != nil {
		return nil, err
	}
	return &Module{Plan: plan, File: e.Render(plan)}, nil
}

// Render prints a plan as a Go file.
func (e *TypeEmitter) Render(plan *Plan) *jen.File {
	f := newFile(e.cfg, e.cfg.Package, e.cfg.PackageName())
	f.ImportName(FmtypePkg, "fmtype")
	validators := e.cfg.Mode() == ModeValidators
	for _, d := range plan.Decls {
		switch d := d.(type) {
		case *TypeAlias:
			genAlias(f, d)
		case *LiteralUnion:
			genUnion(f, d, validators)
		case *ObjectWithValidator:
			genObject(f, d, validators)
		case *Aggregate:
			genObject(f, &d.ObjectWithValidator, validators)
		}
	}
	return f
}

// newFile creates a new Jennifer file with the header comment.
func newFile(cfg *Config, path, name string) *jen.File {
	var f *jen.File
	if path != "" {
		f = jen.NewFilePathName(path, name)
	} else {
		f = jen.NewFile(name)
	}
	header := cfg.Header
	if header == "" {
		header = DefaultHeader
	}
	f.HeaderComment(header)
	f.HeaderComment("Generated at " + cfg.now().UTC().Format(time.RFC3339) + ".")
	return f
}

func genAlias(f *jen.File, a *TypeAlias) {
	f.Commentf("%s %s", a.Name, a.Doc)
	f.Type().Id(a.Name).Op("=").Id(a.Target)
}

func genUnion(f *jen.File, u *LiteralUnion, validators bool) {
	f.Commentf("%s %s", u.Name, u.Doc)
	f.Type().Id(u.Name).String()

	f.Commentf("%s values.", u.Name)
	f.Const().DefsFunc(func(defs *jen.Group) {
		for i, v := range u.Values {
			defs.Id(u.Consts[i]).Id(u.Name).Op("=").Lit(v)
		}
	})

	f.Comment("String returns the value as text.")
	f.Func().Params(jen.Id("v").Id(u.Name)).Id("String").Params().String().Block(
		jen.Return(jen.String().Call(jen.Id("v"))),
	)

	f.Commentf("IsValid reports whether v is one of the %s values.", u.Name)
	f.Func().Params(jen.Id("v").Id(u.Name)).Id("IsValid").Params().Bool().BlockFunc(func(body *jen.Group) {
		body.Switch(jen.Id("v")).BlockFunc(func(sw *jen.Group) {
			cases := make([]jen.Code, 0, len(u.Consts))
			for _, c := range u.Consts {
				cases = append(cases, jen.Id(c))
			}
			sw.Case(cases...).Block(jen.Return(jen.True()))
			sw.Default().Block(jen.Return(jen.False()))
		})
	})

	f.Commentf("%s returns all valid values for %s.", u.ValuesFunc, u.Name)
	f.Func().Id(u.ValuesFunc).Params().Index().Id(u.Name).Block(
		jen.Return(jen.Index().Id(u.Name).ValuesFunc(func(vals *jen.Group) {
			for _, c := range u.Consts {
				vals.Id(c)
			}
		})),
	)

	if !validators {
		return
	}
	f.Commentf("%s checks %s values.", u.Validator, u.Name)
	f.Var().Id(u.Validator).Op("=").Add(enumRule(u.Values, u.Catch))
}

func enumRule(values []string, catch bool) *jen.Statement {
	lits := make([]jen.Code, 0, len(values))
	for _, v := range values {
		lits = append(lits, jen.Lit(v))
	}
	rule := jen.Qual(FmtypePkg, "Enum").Call(lits...)
	if catch {
		rule = rule.Dot("Catch").Call(jen.Lit(""))
	}
	return rule
}

func genObject(f *jen.File, o *ObjectWithValidator, validators bool) {
	f.Commentf("%s %s", o.Name, o.Doc)
	f.Type().Id(o.Name).StructFunc(func(g *jen.Group) {
		for _, p := range o.Props {
			tag, _ := JSONTag(p.Remote)
		g.Id(p.Name).Add(propType(p)).Tag(map[string]string{"json": tag})
		}
	})
	if !validators {
		return
	}

	f.Commentf("%s validates %s.", o.Validator, o.Name)
	f.Var().Id(o.Validator).Op("=").Qual(FmtypePkg, "NewObject").CallFunc(func(g *jen.Group) {
		g.Line().Lit(o.Object)
		for _, p := range o.Props {
			g.Line().Qual(FmtypePkg, "Field").Call(jen.Lit(p.Remote), propRule(p))
		}
	})

	if o.Parse == "" {
		return
	}
	f.Commentf("%s checks data against %s and decodes it.", o.Parse, o.Validator)
	f.Func().Id(o.Parse).Params(jen.Id("data").Map(jen.String()).Any()).Params(jen.Id(o.Name), jen.Error()).Block(
		jen.Var().Id("out").Id(o.Name),
		jen.Err().Op(":=").Id(o.Validator).Dot("Decode").Call(jen.Id("data"), jen.Op("&").Id("out")),
		jen.Return(jen.Id("out"), jen.Err()),
	)
}

func propType(p Prop) jen.Code {
	switch p.Kind {
	case RuleNumerish:
		return jen.Qual(FmtypePkg, "Numerish")
	case RuleStrictNumber:
		return jen.Qual(FmtypePkg, "NullNumber")
	case RuleEnum:
		return jen.Id(p.Type)
	case RuleList:
		return jen.Index().Id(p.Type)
	default:
		return jen.String()
	}
}

func propRule(p Prop) jen.Code {
	switch p.Kind {
	case RuleNumerish:
		return jen.Qual(FmtypePkg, "NumberOrText").Call()
	case RuleStrictNumber:
		return jen.Qual(FmtypePkg, "StrictNumber").Call()
	case RuleEnum:
		if p.Elem != "" {
			return jen.Id(p.Elem)
		}
		return enumRule(p.Values, p.Catch)
	case RuleList:
		return jen.Qual(FmtypePkg, "List").Call(jen.Id(p.Elem))
	default:
		return jen.Qual(FmtypePkg, "String").Call()
	}
}

// String renders the module source.
func (m *Module) String() string {
	return fmt.Sprintf("%#v", m.File)
}
