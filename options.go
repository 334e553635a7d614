package mustache

import "os"

// ValueStringer converts an arbitrary interpolated value to its string
// rendering. It is consulted before escaping is applied, so it controls
// content, not safety.
type ValueStringer func(any any) (string, error)

// Compiler builds Template values from Mustache source, carrying the
// options that should apply uniformly to every template it compiles:
// a partial provider, an escape mode, a value stringer, and the missing
// variable/missing partial error policy. It is also retained by every
// Template it produces, so that a lambda's re-entrant render and a
// partial's nested compile reuse the same options.
type Compiler struct {
	partial        PartialProvider
	outputMode     EscapeMode
	valueStringer  ValueStringer
	errorOnMissing bool
	lambdas        bool
	indentation    bool
}

// New returns a Compiler with default options: HTML escaping, lambdas and
// indentation-preserving partials enabled, and missing variables/partials
// silently rendered as empty.
func New() *Compiler {
	return &Compiler{lambdas: true, indentation: true}
}

// WithPartials adds a partial provider and enables support for partials.
func (r *Compiler) WithPartials(pp PartialProvider) *Compiler {
	r.partial = pp
	return r
}

// WithValueStringer sets a function to convert values to strings. This is
// useful for customizing the output of values in the template.
func (r *Compiler) WithValueStringer(vs ValueStringer) *Compiler {
	r.valueStringer = vs
	return r
}

// WithEscapeMode sets the output mode to either HTML, JSON or raw (plain
// text). The default is HTML.
func (r *Compiler) WithEscapeMode(m EscapeMode) *Compiler {
	r.outputMode = m
	return r
}

// WithErrors enables errors when a data object referred to by the template
// cannot be resolved, and when the partial provider returns an error for a
// partial (such as an unsafe file name). Otherwise, such errors are ignored
// and result in empty strings in the output. A partial the provider does not
// find, or a partial tag with no partial provider, renders as empty either
// way.
func (r *Compiler) WithErrors(b bool) *Compiler {
	r.errorOnMissing = b
	return r
}

// WithLambdas enables or disables lambda expansion. Disabled, a tag that
// resolves to a lambda renders as if it had resolved to nothing.
func (r *Compiler) WithLambdas(b bool) *Compiler {
	r.lambdas = b
	return r
}

// WithIndentation enables or disables indentation preservation for partials
// included at a non-zero column. Enabled by default, matching the Mustache
// spec's standalone-partial-indentation behavior.
func (r *Compiler) WithIndentation(b bool) *Compiler {
	r.indentation = b
	return r
}

// CompileString compiles a Mustache template from a string.
func (r *Compiler) CompileString(data string) (*Template, error) {
	tmpl := Template{
		data:           data,
		otag:           defaultDelimiters.open,
		ctag:           defaultDelimiters.close,
		curline:        1,
		elems:          []interface{}{},
		partial:        r.partial,
		outputMode:     r.outputMode,
		valueStringer:  r.valueStringer,
		errorOnMissing: r.errorOnMissing,
		lambdas:        r.lambdas,
		indentation:    r.indentation,
		parent:         r,
	}
	if err := tmpl.parse(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// CompileFile compiles a Mustache template from a file.
func (r *Compiler) CompileFile(filename string) (*Template, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return r.CompileString(string(data))
}

// Template represents a compiled mustache template which can be used to
// render data.
type Template struct {
	data           string
	otag           string
	ctag           string
	p              int
	curline        int
	elems          []interface{}
	partial        PartialProvider
	outputMode     EscapeMode
	valueStringer  ValueStringer
	errorOnMissing bool
	lambdas        bool
	indentation    bool
	parent         *Compiler
}

// Tags returns the mustache tags for the given template.
func (tmpl *Template) Tags() []Tag {
	return extractTags(tmpl.elems)
}
