package markup

// Node is implemented by every AST node.
type Node interface {
	node()
	Span() Range
}

// Child is a node that can appear in a Program or Tag body.
type Child interface {
	Node
	child()
}

// Attr is a node that can appear in a Tag's attribute list.
type Attr interface {
	Node
	attr()
}

// Program is the root of a template.
type Program struct {
	Range
	Body []Child
}

// BodyType says how a tag's body is parsed.
type BodyType int

const (
	BodyHTML BodyType = iota // nested markup
	BodyText                 // raw text with placeholders
	BodyVoid                 // no body, no closing tag
)

// Template is a name that may contain ${} interpolations, such as a tag
// name, a shorthand id or a shorthand class. Quasis always has one more
// element than Expressions.
type Template struct {
	Range
	Quasis      []Range
	Expressions []Range // code inside each ${}
}

// Static reports whether the template has no interpolations.
func (t Template) Static() bool { return len(t.Expressions) == 0 }

// Tag is an element in either dialect.
type Tag struct {
	Range
	Name                Template
	NameText            string // empty when Name is dynamic
	ShorthandID         *Template
	ShorthandClassNames []Template
	Var                 *Range // binding after "/"
	Args                *Range // code inside (...)
	Params              *Range // code inside |...|
	Attrs               []Attr
	Body                []Child
	HasBody             bool
	BodyType            BodyType
	Concise             bool
}

// AttrValue is the "=value" or ":=value" part of an attribute.
type AttrValue struct {
	Range
	Value Range
	Bound bool
}

// AttrNamed is name(args)=value or a method shorthand name(params) { ... }.
// The default attribute (<tag=value>) has an empty Name.
type AttrNamed struct {
	Range
	Name   Range
	Args   *Range
	Value  *AttrValue
	Method *Range // "(params) { body }"
}

// IsDefault reports whether this is the unnamed default attribute.
func (a *AttrNamed) IsDefault() bool {
	return a.Value != nil && a.Name.Start == a.Name.End
}

// AttrSpread is ...expr.
type AttrSpread struct {
	Range
	Value Range
}

// Text is a run of literal text. Value has escapes decoded unless Raw is
// set, in which case it is the source text unchanged.
type Text struct {
	Range
	Value string
	Raw   bool
}

// Placeholder is ${expr} (escaped) or $!{expr} (unescaped).
type Placeholder struct {
	Range
	Value  Range
	Escape bool
}

// CommentKind distinguishes comment syntaxes.
type CommentKind int

const (
	CommentHTML  CommentKind = iota // <!-- -->
	CommentLine                     // //
	CommentBlock                    // /* */
)

// Comment is a comment in any of the three syntaxes.
type Comment struct {
	Range
	Value Range
	Kind  CommentKind
}

// Scriptlet is "$ statement" or "$ { statements }".
type Scriptlet struct {
	Range
	Value Range
	Block bool
}

// Doctype is <!doctype ...>.
type Doctype struct {
	Range
	Value Range
}

// Declaration is <?...?>.
type Declaration struct {
	Range
	Value Range
}

// CDATA is <![CDATA[...]]>.
type CDATA struct {
	Range
	Value Range
}

// Import is a root-level import statement.
type Import struct {
	Range
}

// Export is a root-level export statement.
type Export struct {
	Range
}

// Class is a root-level class { ... } block.
type Class struct {
	Range
}

// Style is a root-level style { ... } block. Ext keeps the leading dots,
// for example ".less".
type Style struct {
	Range
	Ext   string
	Value Range
}

// Static is a root-level static, server or client statement.
type Static struct {
	Range
	Target string
	Value  Range
	Block  bool
}

func (*Program) node()     {}
func (*Tag) node()         {}
func (*AttrValue) node()   {}
func (*AttrNamed) node()   {}
func (*AttrSpread) node()  {}
func (*Text) node()        {}
func (*Placeholder) node() {}
func (*Comment) node()     {}
func (*Scriptlet) node()   {}
func (*Doctype) node()     {}
func (*Declaration) node() {}
func (*CDATA) node()       {}
func (*Import) node()      {}
func (*Export) node()      {}
func (*Class) node()       {}
func (*Style) node()       {}
func (*Static) node()      {}

func (*Tag) child()         {}
func (*Text) child()        {}
func (*Placeholder) child() {}
func (*Comment) child()     {}
func (*Scriptlet) child()   {}
func (*Doctype) child()     {}
func (*Declaration) child() {}
func (*CDATA) child()       {}
func (*Import) child()      {}
func (*Export) child()      {}
func (*Class) child()       {}
func (*Style) child()       {}
func (*Static) child()      {}

func (*AttrNamed) attr()  {}
func (*AttrSpread) attr() {}

// KindName returns a short name for diagnostics.
func KindName(n Node) string {
	switch n.(type) {
	case *Program:
		return "Program"
	case *Tag:
		return "Tag"
	case *AttrNamed:
		return "AttrNamed"
	case *AttrSpread:
		return "AttrSpread"
	case *AttrValue:
		return "AttrValue"
	case *Text:
		return "Text"
	case *Placeholder:
		return "Placeholder"
	case *Comment:
		return "Comment"
	case *Scriptlet:
		return "Scriptlet"
	case *Doctype:
		return "Doctype"
	case *Declaration:
		return "Declaration"
	case *CDATA:
		return "CDATA"
	case *Import:
		return "Import"
	case *Export:
		return "Export"
	case *Class:
		return "Class"
	case *Style:
		return "Style"
	case *Static:
		return "Static"
	}
	return "Unknown"
}
