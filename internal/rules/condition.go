// Package rules evaluates attribute conditions against media metadata.
package rules

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/overfiltrr/overfiltrr/internal/media"
)

var (
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrUnknownOperator  = errors.New("unknown operator")
	ErrUnknownLogic     = errors.New("unknown logic")
	ErrInvalidOperand   = errors.New("invalid operand")
)

// Operator is a comparison applied between an attribute and an operand.
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpIn           Operator = "in"
	OpNotIn        Operator = "not in"
)

// ParseOperator accepts the operator spellings used in configuration files.
func ParseOperator(s string) (Operator, error) {
	op := Operator(strings.ToLower(strings.Join(strings.Fields(s), " ")))
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpIn, OpNotIn:
		return op, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}

func (o Operator) isMembership() bool {
	return o == OpIn || o == OpNotIn
}

// Logic combines the clauses of a condition.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// ParseLogic returns LogicOr for an empty string.
func ParseLogic(s string) (Logic, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "OR":
		return LogicOr, nil
	case "AND":
		return LogicAnd, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLogic, s)
}

func (l *Logic) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseLogic(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*l = parsed
	return nil
}

// Scalar is a single operand value. Numeric is set when Text parses as a number.
type Scalar struct {
	Text    string
	Number  float64
	Numeric bool
}

// NewScalar builds a Scalar from a string or number.
func NewScalar(v any) Scalar {
	switch x := v.(type) {
	case int:
		return Scalar{Text: strconv.Itoa(x), Number: float64(x), Numeric: true}
	case int64:
		return Scalar{Text: strconv.FormatInt(x, 10), Number: float64(x), Numeric: true}
	case float64:
		return Scalar{Text: strconv.FormatFloat(x, 'f', -1, 64), Number: x, Numeric: true}
	case string:
		return parseScalar(x)
	default:
		return parseScalar(fmt.Sprint(v))
	}
}

func parseScalar(s string) Scalar {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Scalar{Text: s, Number: f, Numeric: true}
	}
	return Scalar{Text: s}
}

func (s Scalar) String() string {
	return s.Text
}

// Operand is the right-hand side of a clause: one scalar or a list.
type Operand struct {
	Values []Scalar
	List   bool
}

// Value returns a single-valued operand.
func Value(v any) Operand {
	return Operand{Values: []Scalar{NewScalar(v)}}
}

// List returns a list operand.
func List[T any](vs ...T) Operand {
	out := Operand{List: true, Values: make([]Scalar, 0, len(vs))}
	for _, v := range vs {
		out.Values = append(out.Values, NewScalar(v))
	}
	return out
}

func (o Operand) String() string {
	if !o.List && len(o.Values) == 1 {
		return o.Values[0].Text
	}
	parts := make([]string, len(o.Values))
	for i, v := range o.Values {
		parts[i] = v.Text
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (o *Operand) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*o = Operand{Values: []Scalar{parseScalar(node.Value)}}
		return nil
	case yaml.SequenceNode:
		out := Operand{List: true, Values: make([]Scalar, 0, len(node.Content))}
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: %w: list items must be scalars", item.Line, ErrInvalidOperand)
			}
			out.Values = append(out.Values, parseScalar(item.Value))
		}
		*o = out
		return nil
	}
	return fmt.Errorf("line %d: %w: expected a scalar or a list", node.Line, ErrInvalidOperand)
}

func (o Operand) MarshalJSON() ([]byte, error) {
	if o.List {
		parts := make([]string, len(o.Values))
		for i, v := range o.Values {
			parts[i] = scalarJSON(v)
		}
		return []byte("[" + strings.Join(parts, ",") + "]"), nil
	}
	if len(o.Values) == 0 {
		return []byte("null"), nil
	}
	return []byte(scalarJSON(o.Values[0])), nil
}

func scalarJSON(s Scalar) string {
	if s.Numeric {
		return strconv.FormatFloat(s.Number, 'f', -1, 64)
	}
	return strconv.Quote(s.Text)
}

// Clause is one (attribute, operator, operand) triple.
type Clause struct {
	Attribute string   `json:"attribute"`
	Operator  Operator `json:"operator"`
	Operand   Operand  `json:"value"`
}

func (c Clause) String() string {
	return fmt.Sprintf("%s %s %s", c.Attribute, c.Operator, c.Operand)
}

// Condition is an ordered list of clauses. In configuration it is written as
// a mapping of attribute to a mapping of operator to value:
//
//	genres: {in: [Anime]}
//	release_year: {">=": 2000, "<": 2010}
//
// Operators under one attribute all have to hold, so the second line reads
// as the range [2000, 2010).
type Condition []Clause

// Groups splits c into per-attribute clause lists, ordered by each
// attribute's first appearance.
func (c Condition) Groups() []Condition {
	var groups []Condition
	index := make(map[string]int)
	for _, cl := range c {
		i, ok := index[cl.Attribute]
		if !ok {
			i = len(groups)
			index[cl.Attribute] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], cl)
	}
	return groups
}

// String renders the clauses joined by ", ", or "(always)" when empty.
func (c Condition) String() string {
	if len(c) == 0 {
		return "(always)"
	}
	parts := make([]string, len(c))
	for i, cl := range c {
		parts[i] = cl.String()
	}
	return strings.Join(parts, ", ")
}

func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*c = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: condition must be a mapping of attribute to operators", node.Line)
	}

	var out Condition
	for i := 0; i+1 < len(node.Content); i += 2 {
		attr := node.Content[i].Value
		ops := node.Content[i+1]
		if ops.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: attribute %q must map operators to values", ops.Line, attr)
		}
		for j := 0; j+1 < len(ops.Content); j += 2 {
			op, err := ParseOperator(ops.Content[j].Value)
			if err != nil {
				return fmt.Errorf("line %d: attribute %q: %w", ops.Content[j].Line, attr, err)
			}
			var operand Operand
			if err := ops.Content[j+1].Decode(&operand); err != nil {
				return fmt.Errorf("attribute %q: %w", attr, err)
			}
			out = append(out, Clause{Attribute: attr, Operator: op, Operand: operand})
		}
	}
	*c = out
	return nil
}

// Validate checks that every clause names a known attribute and carries an
// operand its operator can use.
func (c Condition) Validate() error {
	var errs []error
	for _, cl := range c {
		if !media.IsKnownAttribute(cl.Attribute) {
			errs = append(errs, fmt.Errorf("%w %q", ErrUnknownAttribute, cl.Attribute))
			continue
		}
		if _, err := ParseOperator(string(cl.Operator)); err != nil {
			errs = append(errs, err)
			continue
		}
		if len(cl.Operand.Values) == 0 {
			errs = append(errs, fmt.Errorf("%w: %s has no value", ErrInvalidOperand, cl.Attribute))
			continue
		}
		if cl.Operand.List && !cl.Operator.isMembership() && !media.IsListAttribute(cl.Attribute) {
			errs = append(errs, fmt.Errorf("%w: %s %s expects a single value", ErrInvalidOperand, cl.Attribute, cl.Operator))
		}
	}
	return errors.Join(errs...)
}
