package mustache

// LambdaFunc is the signature a struct field, map value, or method has to be
// recognized as a Mustache lambda (spec.md §4.2/§4.4); a function taking a
// *LambdaContext and returning only a string is recognized as well. It is called
// fresh on every occurrence of the tag that names it — results are never
// cached, so a lambda may observe or mutate external state across calls.
type LambdaFunc func(lc *LambdaContext) (string, error)

// LambdaContext is passed to a lambda each time it is invoked. It exposes
// the section's raw, unrendered body (empty for an interpolation lambda),
// a way to write bytes directly into the active output sink, and a way to
// re-enter the parser/renderer against the currently active delimiters and
// context stack.
type LambdaContext struct {
	// InnerText is the literal, unrendered body of a section lambda, or the
	// empty string for an interpolation lambda.
	InnerText string

	delims delimiters
	escape EscapeMode
	w      *escapeWriter
	render func(text string, d delimiters) (string, error)
}

// Write writes raw bytes into the currently active sink, subject to the
// escape mode in effect when the lambda was invoked: an interpolation
// lambda's direct writes are escaped the same way {{f}} vs {{{f}}} would
// escape a plain value; a section lambda's writes are never escaped here
// (the section's own sub-template tags do their own escaping when rendered
// through Render).
func (lc *LambdaContext) Write(p []byte) (int, error) {
	return lc.w.writeEscaped(p, lc.escape)
}

// WriteString is a convenience wrapper around Write.
func (lc *LambdaContext) WriteString(s string) (int, error) {
	return lc.Write([]byte(s))
}

// Render parses templateText with the delimiters active at the lambda's call
// site and renders it against the context stack active at the call site,
// returning the rendered text as an owned string (spec.md's render_alloc).
func (lc *LambdaContext) Render(templateText string) (string, error) {
	return lc.render(templateText, lc.delims)
}

// RenderInto is like Render but streams the result directly into the active
// sink (spec.md's render), instead of returning it.
func (lc *LambdaContext) RenderInto(templateText string) error {
	out, err := lc.Render(templateText)
	if err != nil {
		return err
	}
	_, err = lc.Write([]byte(out))
	return err
}
