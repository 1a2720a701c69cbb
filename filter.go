package records

// Filter is one node of the predicate tree evaluated against a record.
// A nil Filter is the empty filter: it matches every record and is the
// identity element of And.
type Filter interface {
	filterNode()
}

// Property matches when every listed key equals the record value. A key
// mapped to nil matches only records where the key is nil or absent.
type Property map[string]any

// And matches when every child matches. An empty And matches everything.
type And []Filter

// Or matches when at least one child matches. An empty Or matches nothing.
type Or []Filter

// Not negates its child.
type Not struct {
	Filter Filter
}

// In matches when the record value equals one of Values.
type In struct {
	Key    string
	Values []any
}

// NotIn matches when the record value equals none of Values.
type NotIn struct {
	Key    string
	Values []any
}

// IsNull matches when the key is nil or absent.
type IsNull struct {
	Key string
}

// IsNotNull matches when the key is present with a non-nil value.
type IsNotNull struct {
	Key string
}

// Between matches when From <= value <= To.
type Between struct {
	Key  string
	From any
	To   any
}

// NotBetween matches when the value is comparable and lies outside [From, To].
type NotBetween struct {
	Key  string
	From any
	To   any
}

// Gt matches when the value is greater than Value.
type Gt struct {
	Key   string
	Value any
}

// Gte matches when the value is greater than or equal to Value.
type Gte struct {
	Key   string
	Value any
}

// Lt matches when the value is less than Value.
type Lt struct {
	Key   string
	Value any
}

// Lte matches when the value is less than or equal to Value.
type Lte struct {
	Key   string
	Value any
}

// Raw carries a backend specific query string. Connectors without a query
// engine reject it with ErrUnsupportedFilter.
type Raw struct {
	Query    string
	Bindings []any
}

// Expr matches when Expression evaluates to true for the record. The record
// fields are exposed as top level variables, Args under "args".
type Expr struct {
	Expression string
	Args       map[string]any
}

func (Property) filterNode()   {}
func (And) filterNode()        {}
func (Or) filterNode()         {}
func (Not) filterNode()        {}
func (In) filterNode()         {}
func (NotIn) filterNode()      {}
func (IsNull) filterNode()     {}
func (IsNotNull) filterNode()  {}
func (Between) filterNode()    {}
func (NotBetween) filterNode() {}
func (Gt) filterNode()         {}
func (Gte) filterNode()        {}
func (Lt) filterNode()         {}
func (Lte) filterNode()        {}
func (Raw) filterNode()        {}
func (Expr) filterNode()       {}
