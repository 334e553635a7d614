package mustache

import (
	"bytes"
	"io"
)

// contextFrame is a singly linked spine of Contexts representing the
// currently active lexical scopes — spec.md's ContextStack. It grows
// downward as sections push item contexts; frames are immutable once
// created, so a frame outlives every Context/Iterator derived from it
// within the same section walk (spec.md invariant 1).
type contextFrame struct {
	parent *contextFrame
	ctx    Context
}

func (f *contextFrame) push(ctx Context) *contextFrame {
	return &contextFrame{parent: f, ctx: ctx}
}

func stackFromContexts(contexts []interface{}) *contextFrame {
	var stack *contextFrame
	for i := len(contexts) - 1; i >= 0; i-- {
		if c, ok := contexts[i].(Context); ok {
			stack = stack.push(c)
			continue
		}
		stack = stack.push(newReflectContext(contexts[i]))
	}
	return stack
}

func (tmpl *Template) lambdasEnabled() bool     { return tmpl.lambdas }
func (tmpl *Template) indentationEnabled() bool { return tmpl.indentation }

// fragmentRenderer returns the closure handed to lambdas as their re-entrant
// render capability (spec.md §4.4's render/render_alloc): it re-parses text
// with the delimiters active at the lambda's call site and renders the
// result against the context stack active at that same call site.
func (tmpl *Template) fragmentRenderer(stack *contextFrame) func(text string, d delimiters) (string, error) {
	return func(text string, d delimiters) (string, error) {
		frag := &Template{
			data:           text,
			otag:           d.open,
			ctag:           d.close,
			curline:        1,
			elems:          []interface{}{},
			partial:        tmpl.partial,
			outputMode:     tmpl.outputMode,
			valueStringer:  tmpl.valueStringer,
			errorOnMissing: tmpl.errorOnMissing,
			lambdas:        tmpl.lambdas,
			indentation:    tmpl.indentation,
			parent:         tmpl.parent,
		}
		if err := frag.parse(); err != nil {
			return "", err
		}
		var buf bytes.Buffer
		sub := newEscapeWriter(&buf)
		sub.stringer = frag.valueStringer
		if err := frag.renderElements(frag.elems, stack, sub); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
}

func (tmpl *Template) renderTemplate(stack *contextFrame, w *escapeWriter) error {
	return tmpl.renderElements(tmpl.elems, stack, w)
}

func (tmpl *Template) renderElements(elems []interface{}, stack *contextFrame, w *escapeWriter) error {
	for _, elem := range elems {
		if err := tmpl.renderElement(elem, stack, w); err != nil {
			return err
		}
	}
	return nil
}

func (tmpl *Template) renderElement(element interface{}, stack *contextFrame, w *escapeWriter) error {
	switch elem := element.(type) {
	case *textElement:
		_, err := w.writeRaw(elem.text)
		return err
	case *varElement:
		return tmpl.renderVar(elem, stack, w)
	case *sectionElement:
		if elem.inverted {
			return tmpl.renderInvertedSection(elem, stack, w)
		}
		return tmpl.renderSection(elem, stack, w)
	case *partialElement:
		return tmpl.renderPartial(elem, stack, w)
	}
	return nil
}

// renderVar implements spec.md §4.3's Interpolation element: walk the
// context stack top to root, stopping at the first frame that isn't
// ResNotFound. Only ResNotFound continues the walk upward. A ResLambda
// whose body raises a plain error is swallowed by ExpandLambda per §7 (any
// bytes already written stay), so the error returned here is nil in that
// case; only an engine-declared error kind or a genuine write failure
// reaches this point.
func (tmpl *Template) renderVar(elem *varElement, stack *contextFrame, w *escapeWriter) error {
	path := splitPath(elem.name)
	renderFn := tmpl.fragmentRenderer(stack)

	escape := tmpl.outputMode
	if elem.raw {
		escape = Raw
		savedStringer := w.stringer
		w.stringer = nil
		defer func() { w.stringer = savedStringer }()
	}

	for f := stack; f != nil; f = f.parent {
		res, err := f.ctx.Interpolate(w, path, escape)
		if err != nil {
			return err
		}
		switch res.Kind {
		case ResNotFound:
			continue
		case ResLambda:
			if !tmpl.lambdasEnabled() {
				return nil
			}
			_, err := f.ctx.ExpandLambda(w, path, "", escape, defaultDelimiters, renderFn)
			return err
		case ResField:
			return nil
		default:
			// ResBroken/ResConsumed: a prefix of the path matched but the
			// full path did not resolve. Unlike ResNotFound this does not
			// fall back to a parent frame, but it is still a missing
			// variable for error-reporting purposes.
			if tmpl.errorOnMissing {
				return newMissingVariableError(elem.name)
			}
			return nil
		}
	}
	if tmpl.errorOnMissing {
		return newMissingVariableError(elem.name)
	}
	return nil
}

// renderSection implements spec.md §4.3's Section element.
func (tmpl *Template) renderSection(elem *sectionElement, stack *contextFrame, w *escapeWriter) error {
	path := splitPath(elem.name)
	renderFn := tmpl.fragmentRenderer(stack)
	for f := stack; f != nil; f = f.parent {
		it, res := f.ctx.Iterator(path)
		switch res.Kind {
		case ResNotFound:
			continue
		case ResBroken, ResConsumed:
			return res.Err
		case ResLambda:
			if !tmpl.lambdasEnabled() {
				return nil
			}
			_, err := f.ctx.ExpandLambda(w, path, innerText(elem.elems, elem.delims), Unescaped, elem.delims, renderFn)
			return err
		case ResField:
			if it == nil || !it.truthy() {
				return nil
			}
			for {
				item, ok := it.next()
				if !ok {
					break
				}
				if it.idx >= len(it.items) && tmpl.indentationEnabled() {
					w.suppressTrailingIndent()
				}
				child := stack.push(&reflectContext{v: item})
				if err := tmpl.renderElements(elem.elems, child, w); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return nil
}

// renderInvertedSection implements spec.md §4.3's InvertedSection element:
// the body renders iff the iterator is Empty (lambdas count as truthy, so
// they skip the body; with lambdas disabled a lambda counts as empty and the
// body renders).
func (tmpl *Template) renderInvertedSection(elem *sectionElement, stack *contextFrame, w *escapeWriter) error {
	for f := stack; f != nil; f = f.parent {
		it, res := f.ctx.Iterator(splitPath(elem.name))
		switch res.Kind {
		case ResNotFound:
			continue
		case ResBroken, ResConsumed:
			if res.Err != nil {
				return res.Err
			}
			return tmpl.renderElements(elem.elems, stack, w)
		case ResLambda:
			if !tmpl.lambdasEnabled() {
				return tmpl.renderElements(elem.elems, stack, w)
			}
			return nil
		case ResField:
			if it == nil || !it.truthy() {
				return tmpl.renderElements(elem.elems, stack, w)
			}
			return nil
		}
	}
	return tmpl.renderElements(elem.elems, stack, w)
}

// renderPartial implements spec.md §4.3's Partial element: look up the
// named template, and if indentation preservation is enabled and the
// partial begins at a non-zero column, push an indent for its duration.
func (tmpl *Template) renderPartial(elem *partialElement, stack *contextFrame, w *escapeWriter) error {
	if tmpl.partial == nil || tmpl.partial.IsEmpty() {
		return nil
	}
	data, err := tmpl.partial.Get(elem.name)
	if err != nil {
		if tmpl.errorOnMissing {
			return err
		}
		return nil
	}
	if data == "" {
		return nil
	}

	sub, err := tmpl.parent.CompileString(data)
	if err != nil {
		return err
	}

	indentActive := tmpl.indentationEnabled() && elem.indent != ""
	if indentActive {
		w.pushIndent(elem.indent)
		w.forcePendingIndent()
		defer w.popIndent(elem.indent)
	}
	if err := sub.renderTemplate(stack, w); err != nil {
		return err
	}
	// A standalone partial reference consumes its own source line, newline
	// included (parse.go's standalone-tag trimming). When the partial is
	// indented and its own content didn't already end in one, restore it so
	// the line it replaced still terminates normally, per spec.md §8
	// scenario 8. A partial at column zero gets no restored newline.
	if indentActive && !w.endsWithNewline() {
		_, err := w.writeRaw([]byte("\n"))
		return err
	}
	return nil
}

// Frender uses the given data source — generally a map or struct — to
// render the compiled template to an io.Writer. Multiple context values
// form a flat priority chain: earlier arguments are tried first.
func (tmpl *Template) Frender(out io.Writer, context ...interface{}) error {
	w := newEscapeWriter(out)
	w.stringer = tmpl.valueStringer
	return tmpl.renderTemplate(stackFromContexts(context), w)
}

// Render uses the given data source — generally a map or struct — to render
// the compiled template and return the output.
func (tmpl *Template) Render(context ...interface{}) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Frender(&buf, context...)
	return buf.String(), err
}

// RenderAlloc is like Render, but pre-sizes the output buffer, matching
// spec.md §6's "growable byte buffer with capacity hint" sink.
func (tmpl *Template) RenderAlloc(capacityHint int, context ...interface{}) (string, error) {
	buf := bytes.NewBuffer(make([]byte, 0, capacityHint))
	err := tmpl.Frender(buf, context...)
	return buf.String(), err
}

// RenderInLayout uses the given data source to render the compiled template
// and layout "wrapper" template, and returns the output.
func (tmpl *Template) RenderInLayout(layout *Template, context ...interface{}) (string, error) {
	var buf bytes.Buffer
	err := tmpl.FRenderInLayout(&buf, layout, context...)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FRenderInLayout uses the given data source to render the compiled
// template and layout "wrapper" template to an io.Writer.
func (tmpl *Template) FRenderInLayout(out io.Writer, layout *Template, context ...interface{}) error {
	content, err := tmpl.Render(context...)
	if err != nil {
		return err
	}
	allContext := make([]interface{}, len(context)+1)
	copy(allContext[1:], context)
	allContext[0] = map[string]string{"content": content}
	return layout.Frender(out, allContext...)
}
