package protofile

// NodeType tags the three parse node variants.
type NodeType uint8

const (
	TypeUnknown NodeType = iota
	TypeNumber
	TypeString
	TypeObject
)

func (t NodeType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Node is one parsed unit of schema text: *Number, *String or *Object.
type Node interface {
	Type() NodeType
	// Offset is the byte offset of the node in the source text.
	Offset() int
	node()
}

// Number holds an unevaluated numeric lexeme. See Interpret.
type Number struct {
	Text  string
	Start int
}

// String holds the raw text between the quotes; escapes are kept as
// written. See Value.
type String struct {
	Text  string
	Start int
}

// Object is a call-like form: name(args...) optionally followed by one
// attached [list] or {dict}.
type Object struct {
	Name     string
	NameHash uint64
	Args     List
	// AttachedList is nil unless the object carries a [...] body.
	AttachedList *List
	// AttachedDict is nil unless the object carries a {...} body.
	AttachedDict *Dict
	Start        int
}

func (*Number) Type() NodeType { return TypeNumber }
func (*String) Type() NodeType { return TypeString }
func (*Object) Type() NodeType { return TypeObject }

func (n *Number) Offset() int { return n.Start }
func (s *String) Offset() int { return s.Start }
func (o *Object) Offset() int { return o.Start }

func (*Number) node() {}
func (*String) node() {}
func (*Object) node() {}

// List is an ordered sequence of nodes.
type List []Node

// Pair is one key: value entry of a Dict.
type Pair struct {
	Key   Node
	Value Node
}

// Dict is an ordered sequence of pairs. Duplicate keys are kept; lookups
// return the first match.
type Dict []Pair

// Lookup returns the value of the first pair whose key is a string or
// number with the given raw text.
func (d Dict) Lookup(key string) (Node, bool) {
	for _, p := range d {
		switch k := p.Key.(type) {
		case *String:
			if k.Text == key {
				return p.Value, true
			}
		case *Number:
			if k.Text == key {
				return p.Value, true
			}
		}
	}
	return nil, false
}

// LookupNode returns the value of the first pair whose key is structurally
// equal to key.
func (d Dict) LookupNode(key Node) (Node, bool) {
	for _, p := range d {
		if Equal(p.Key, key) {
			return p.Value, true
		}
	}
	return nil, false
}

// Arg returns the i-th argument or nil.
func (o *Object) Arg(i int) Node {
	if i < 0 || i >= len(o.Args) {
		return nil
	}
	return o.Args[i]
}

// StringArg returns the i-th argument when it is a string literal.
func (o *Object) StringArg(i int) (*String, bool) {
	s, ok := o.Arg(i).(*String)
	return s, ok
}

// NumberArg returns the i-th argument when it is a number literal.
func (o *Object) NumberArg(i int) (*Number, bool) {
	n, ok := o.Arg(i).(*Number)
	return n, ok
}

// ObjectArg returns the i-th argument when it is an object.
func (o *Object) ObjectArg(i int) (*Object, bool) {
	obj, ok := o.Arg(i).(*Object)
	return obj, ok
}
