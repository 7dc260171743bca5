package gen

// Mode selects what a type module contains.
type Mode uint8

const (
	// ModeValidators emits declarations and runtime validators.
	ModeValidators Mode = iota
	// ModeTypes emits declarations only.
	ModeTypes
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeTypes {
		return "types"
	}
	return "validators"
}

// RuleKind is the runtime check of a property.
type RuleKind uint8

// Rule kinds.
const (
	RuleString RuleKind = iota
	RuleNumerish
	RuleStrictNumber
	RuleEnum
	RuleList
)

// Prop is a struct field together with its validator.
type Prop struct {
	Name   string // Go field name
	Remote string // FileMaker field name
	Kind   RuleKind
	// Type is the enum type of RuleEnum or the element type of RuleList.
	Type string
	// Values and Catch describe a RuleEnum.
	Values []string
	Catch  bool
	// Elem is the validator of a RuleEnum or the element validator of RuleList.
	Elem string
}

// Decl is a top-level declaration of a type module.
type Decl interface {
	DeclName() string
}

// TypeAlias declares Name as an alias of Target.
type TypeAlias struct {
	Name   string
	Target string
	Doc    string
}

// LiteralUnion declares a string type limited to Values, one constant per
// value, and in validator mode an enum validator.
type LiteralUnion struct {
	Name       string
	Validator  string
	ValuesFunc string
	Values     []string
	Consts     []string
	// Catch maps values outside the set to "" instead of failing.
	Catch bool
	Doc   string
}

// ObjectWithValidator declares a struct and, in validator mode, its object
// validator and parse function.
type ObjectWithValidator struct {
	Name      string
	Validator string
	Parse     string // empty for relation objects
	Object    string // name reported in validation errors
	Props     []Prop
	Doc       string
}

// Aggregate is the object of all portals of a layout. Every property is a
// list of a relation object.
type Aggregate struct {
	ObjectWithValidator
}

// DeclName implements Decl.
func (d *TypeAlias) DeclName() string { return d.Name }

// DeclName implements Decl.
func (d *LiteralUnion) DeclName() string { return d.Name }

// DeclName implements Decl.
func (d *ObjectWithValidator) DeclName() string { return d.Name }
