package gen

import (
	"fmt"
	"path"

	"github.com/dave/jennifer/jen"
)

// ClientDir is the subdirectory of the output directory holding clients.
const ClientDir = "client"

// ClientModule is a rendered client package.
type ClientModule struct {
	Schema  string // sanitized schema name
	Layout  string
	Package string
	// Path is the file path relative to the output directory.
	Path string
	File *jen.File
}

// ClientEmitter renders typed client packages.
type ClientEmitter struct {
	cfg  *Config
	pkgs *Namespace
}

// NewClientEmitter returns a client emitter for the output package of cfg.
func NewClientEmitter(cfg *Config) *ClientEmitter {
	return &ClientEmitter{cfg: cfg, pkgs: NewNamespace()}
}

// Emit renders the client of one layout bound to the symbols of its type
// module. The adapter and its load-time guards follow shape.
func (e *ClientEmitter) Emit(layout string, sym Symbols, shape CredentialShape) (*ClientModule, error) {
	if e.cfg.Package == "" {
		return nil, NewConfigError("Package", nil, "client generation needs the import path of the output directory")
	}
	pkg := e.pkgs.Take(PackageName(sym.Schema))
	m := &ClientModule{
		Schema:  sym.Schema,
		Layout:  layout,
		Package: pkg,
		Path:    path.Join(ClientDir, pkg, pkg+".go"),
	}
	f := newFile(e.cfg, e.cfg.ClientPackage(pkg), pkg)
	f.ImportName(FmdapiPkg, "fmdapi")
	f.ImportName(e.cfg.Package, e.cfg.PackageName())

	if guards := shape.Guards(); len(guards) > 0 {
		f.Var().DefsFunc(func(defs *jen.Group) {
			for _, g := range guards {
				defs.Id(g.Var).Op("=").Qual(FmdapiPkg, "MustEnv").Call(jen.Lit(g.Env))
			}
		})
	}

	typ := jen.Qual(e.cfg.Package, sym.Type)
	portals := jen.Qual(FmdapiPkg, "PortalData")
	if sym.HasPortals() {
		portals = jen.Qual(e.cfg.Package, sym.Portals)
	}
	opts := jen.Dict{
		jen.Id("Adapter"): adapter(shape),
		jen.Id("Layout"):  jen.Lit(layout),
	}
	if e.cfg.Mode() == ModeValidators {
		validators := jen.Dict{jen.Id("FieldData"): jen.Qual(e.cfg.Package, sym.Parse)}
		if sym.HasPortals() {
			validators[jen.Id("PortalData")] = jen.Qual(e.cfg.Package, sym.PortalsParse)
		}
		opts[jen.Id("Validators")] = jen.Op("&").Qual(FmdapiPkg, "Validators").Types(typ.Clone(), portals.Clone()).Values(validators)
	}

	f.Commentf("Client is the Data API client of the %s layout.", layout)
	f.Var().Id("Client").Op("=").Qual(FmdapiPkg, "NewClient").Call(
		jen.Qual(FmdapiPkg, "ClientOptions").Types(typ, portals).Values(opts),
	)
	m.File = f
	return m, nil
}

func adapter(shape CredentialShape) jen.Code {
	base := func() jen.Code {
		return jen.Qual(FmdapiPkg, "BaseOptions").Values(jen.Dict{
			jen.Id("Server"):   jen.Id("server"),
			jen.Id("Database"): jen.Id("database"),
		})
	}
	switch s := shape.(type) {
	case HostAuth:
		return jen.Qual(FmdapiPkg, "NewHostAdapter").Call(jen.Qual(FmdapiPkg, "HostOptions").Values(jen.Dict{
			jen.Id("ScriptName"): jen.Lit(s.ScriptName),
		}))
	case KeyAuth:
		return jen.Qual(FmdapiPkg, "MustOttoAdapter").Call(jen.Qual(FmdapiPkg, "OttoOptions").Values(jen.Dict{
			jen.Id("BaseOptions"): base(),
			jen.Id("APIKey"):      jen.Qual(FmdapiPkg, "OttoAPIKey").Call(jen.Id("apiKey")),
		}))
	case PasswordAuth:
		return jen.Qual(FmdapiPkg, "MustFetchAdapter").Call(jen.Qual(FmdapiPkg, "FetchOptions").Values(jen.Dict{
			jen.Id("BaseOptions"): base(),
			jen.Id("Username"):    jen.Id("username"),
			jen.Id("Password"):    jen.Id("password"),
		}))
	default:
		panic(fmt.Sprintf("gen: unknown credential shape %T", shape))
	}
}

// IndexPath is the path of the client index relative to the output directory.
var IndexPath = path.Join(ClientDir, "index.go")

// Index renders client/index.go, which re-exports every client as
// <Schema><ClientSuffix>. It returns nil when there are no clients.
func (e *ClientEmitter) Index(clients []*ClientModule) *jen.File {
	if len(clients) == 0 {
		return nil
	}
	f := newFile(e.cfg, e.cfg.ClientPackage(""), ClientDir)
	names := NewNamespace()
	f.Var().DefsFunc(func(defs *jen.Group) {
		for _, c := range clients {
			f.ImportName(e.cfg.ClientPackage(c.Package), c.Package)
			name := names.Take(c.Schema + e.cfg.ClientSuffix)
			defs.Comment(fmt.Sprintf("%s is the client of the %s layout.", name, c.Layout))
			defs.Id(name).Op("=").Qual(e.cfg.ClientPackage(c.Package), "Client")
		}
	})
	return f
}
