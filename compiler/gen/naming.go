package gen

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	rules    = ruleset()
	acronyms = make(map[string]struct{})
	title    = cases.Title(language.Und, cases.NoLower)
)

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	for _, w := range []string{
		"ACL", "API", "ASCII", "AWS", "CPU", "CSS", "DNS", "EOF", "GB", "GUID",
		"HTML", "HTTP", "HTTPS", "ID", "IDS", "IP", "JSON", "KB", "LHS", "MAC",
		"MB", "QPS", "RAM", "RHS", "RPC", "SKU", "SLA", "SMTP", "SQL", "SSH",
		"SSO", "TCP", "TLS", "TTL", "UDP", "UI", "UID", "URI", "URL", "UTF8",
		"UUID", "VM", "XML", "XMPP", "XSRF", "XSS",
	} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	return rules
}

// words splits s on every character outside [A-Za-z0-9].
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
}

func pascalWords(words []string) string {
	for i, w := range words {
		upper := strings.ToUpper(w)
		if _, ok := acronyms[upper]; ok {
			words[i] = upper
		} else {
			words[i] = rules.Capitalize(w)
		}
	}
	return strings.Join(words, "")
}

// pascal converts a FileMaker name to PascalCase.
//
//	user_id    => UserID
//	Orders::id => OrdersID
func pascal(s string) string {
	return pascalWords(words(s))
}

// snake converts a Go identifier to snake_case.
//
//	UserID   => user_id
//	HTTPCode => http_code
func snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Put '_' if it is not a start or end of a word, current letter is upper-case and
		// previous is lower-case or next is lower-case and previous is not a separator.
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Identifier returns an exported Go identifier for a FileMaker name. Only
// [A-Za-z0-9_] survive, words are joined in PascalCase, a leading digit gets
// an "X" prefix and an empty result becomes "X".
func Identifier(s string) string {
	id := pascal(s)
	switch {
	case id == "":
		return "X"
	case id[0] >= '0' && id[0] <= '9':
		return "X" + id
	}
	return id
}

// valueIdent returns the constant suffix of a value list entry.
func valueIdent(v string) string {
	if v == "" {
		return "Empty"
	}
	return Identifier(title.String(v))
}

// PackageName returns a Go package name for a schema or directory name.
func PackageName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	switch {
	case name == "":
		return "x"
	case name[0] >= '0' && name[0] <= '9':
		name = "x" + name
	case token.IsKeyword(name):
		name += "pkg"
	}
	return name
}

// goosArch holds the file name suffixes the go tool treats as build constraints.
var goosArch = map[string]struct{}{
	"aix": {}, "android": {}, "darwin": {}, "dragonfly": {}, "freebsd": {}, "hurd": {},
	"illumos": {}, "ios": {}, "js": {}, "linux": {}, "nacl": {}, "netbsd": {},
	"openbsd": {}, "plan9": {}, "solaris": {}, "wasip1": {}, "windows": {}, "zos": {},
	"386": {}, "amd64": {}, "arm": {}, "arm64": {}, "loong64": {}, "mips": {},
	"mips64": {}, "mips64le": {}, "mipsle": {}, "ppc64": {}, "ppc64le": {},
	"riscv64": {}, "s390x": {}, "wasm": {}, "test": {},
}

// FileName returns the Go file name of a schema. Names whose last
// segment the go tool would read as a build constraint or a test file
// get a "_schema" suffix.
func FileName(schema string) string {
	name := snake(Identifier(schema))
	if i := strings.LastIndexByte(name, '_'); i >= 0 {
		if _, ok := goosArch[name[i+1:]]; ok {
			name += "_schema"
		}
	}
	return name + ".go"
}

// JSONTag returns the json tag name encoding/json reads as remote. It
// reports false, with "-", when no tag name can carry remote.
func JSONTag(remote string) (string, bool) {
	switch remote {
	case "":
		return "-", false
	case "-":
		return "-,", true
	}
	for _, c := range remote {
		switch {
		case strings.ContainsRune("!#$%&()*+-./:;<=>?@[]^_{|}~ ", c):
		case !unicode.IsLetter(c) && !unicode.IsDigit(c):
			return "-", false
		}
	}
	return remote, true
}

// Namespace hands out unique identifiers. A name taken twice gets a numeric
// suffix, starting at 2.
type Namespace struct {
	used map[string]struct{}
}

// NewNamespace returns an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{used: make(map[string]struct{})}
}

// Take reserves base, or the first free base<N>, and returns it.
func (n *Namespace) Take(base string) string {
	name := base
	for i := 2; ; i++ {
		if _, ok := n.used[name]; !ok {
			break
		}
		name = base + strconv.Itoa(i)
	}
	n.used[name] = struct{}{}
	return name
}

// Has reports whether name is taken.
func (n *Namespace) Has(name string) bool {
	_, ok := n.used[name]
	return ok
}
