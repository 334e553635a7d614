package mustache

import "strconv"

// A TagType represents the specific type of mustache tag that a Tag
// represents. The zero TagType is not a valid type.
type TagType uint

// Defines representing the possible Tag types.
const (
	Invalid TagType = iota
	Variable
	Section
	InvertedSection
	Partial
)

// Skip all whitespace appearing after these types of tags until end of line
// if the line only contains a tag and whitespace.
const SkipWhitespaceTagTypes = "#^/<>=!"

func (t TagType) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "type" + strconv.Itoa(int(t))
}

var tagNames = []string{
	Invalid:         "Invalid",
	Variable:        "Variable",
	Section:         "Section",
	InvertedSection: "InvertedSection",
	Partial:         "Partial",
}

// Tag represents the different mustache tag types.
//
// Not all methods apply to all kinds of tags. Restrictions, if any, are noted
// in the documentation for each method. Use the Type method to find out the
// type of tag before calling type-specific methods. Calling a method
// inappropriate to the type of tag causes a run time panic.
type Tag interface {
	// Type returns the type of the tag.
	Type() TagType
	// Name returns the name of the tag.
	Name() string
	// Tags returns any child tags. It panics for tag types which cannot contain
	// child tags (i.e. variable tags).
	Tags() []Tag
}

// delimiters records the tag open/close markers active when an element was
// parsed, so a lambda re-render can use them per spec even after a later
// {{=...=}} in the same template changes them for subsequent elements.
type delimiters struct {
	open  string
	close string
}

var defaultDelimiters = delimiters{open: "{{", close: "}}"}

type textElement struct {
	text []byte
}

type varElement struct {
	name string
	// raw marks an explicit {{{x}}} or {{&x}} tag: its value is rendered via
	// its bare scalar form and always written unescaped, bypassing both the
	// compiler's escape mode and its ValueStringer. A plain {{x}} tag has
	// raw == false and instead goes through both.
	raw    bool
	delims delimiters
}

type sectionElement struct {
	name      string
	inverted  bool
	startline int
	elems     []interface{}
	delims    delimiters
}

type partialElement struct {
	name   string
	indent string
}

func (e *varElement) Type() TagType { return Variable }
func (e *varElement) Name() string  { return e.name }
func (e *varElement) Tags() []Tag   { panic("mustache: Tags on Variable type") }

func (e *sectionElement) Type() TagType {
	if e.inverted {
		return InvertedSection
	}
	return Section
}
func (e *sectionElement) Name() string { return e.name }
func (e *sectionElement) Tags() []Tag  { return extractTags(e.elems) }

func (e *partialElement) Type() TagType { return Partial }
func (e *partialElement) Name() string  { return e.name }
func (e *partialElement) Tags() []Tag   { return nil }

func extractTags(elems []interface{}) []Tag {
	tags := make([]Tag, 0, len(elems))
	for _, elem := range elems {
		switch elem := elem.(type) {
		case *varElement:
			tags = append(tags, elem)
		case *sectionElement:
			tags = append(tags, elem)
		case *partialElement:
			tags = append(tags, elem)
		}
	}
	return tags
}

// innerText reconstructs the literal source text of a section body using the
// given delimiters. It is used to supply LambdaContext.InnerText: since the
// body's own static text never depends on which delimiters are active, this
// round-trips exactly for bodies that are pure text, and faithfully for
// bodies containing tags as long as the caller passes the delimiters that
// were active when the section was parsed.
func innerText(elems []interface{}, d delimiters) string {
	var b []byte
	for _, elem := range elems {
		b = appendElementText(b, elem, d)
	}
	return string(b)
}

func appendElementText(b []byte, element interface{}, d delimiters) []byte {
	switch elem := element.(type) {
	case *textElement:
		b = append(b, elem.text...)
	case *varElement:
		b = append(b, d.open...)
		if elem.raw {
			b = append(b, '&')
			b = append(b, ' ')
		}
		b = append(b, elem.name...)
		b = append(b, d.close...)
	case *sectionElement:
		tag := byte('#')
		if elem.inverted {
			tag = '^'
		}
		b = append(b, d.open...)
		b = append(b, tag)
		b = append(b, elem.name...)
		b = append(b, d.close...)
		for _, nelem := range elem.elems {
			b = appendElementText(b, nelem, d)
		}
		b = append(b, d.open...)
		b = append(b, '/')
		b = append(b, elem.name...)
		b = append(b, d.close...)
	case *partialElement:
		b = append(b, d.open...)
		b = append(b, '>')
		b = append(b, elem.name...)
		b = append(b, d.close...)
	}
	return b
}
