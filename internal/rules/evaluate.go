package rules

import (
	"strings"

	"github.com/overfiltrr/overfiltrr/internal/media"
)

// Evaluate reports whether attrs satisfy cond under logic. Clauses on the
// same attribute form one group that holds only when every one of its
// operators holds; logic combines the groups. An empty condition is always
// satisfied. A clause naming an absent attribute is false.
func Evaluate(attrs media.Attributes, cond Condition, logic Logic) bool {
	if len(cond) == 0 {
		return true
	}
	for _, group := range cond.Groups() {
		ok := evalGroup(attrs, group)
		if logic == LogicAnd && !ok {
			return false
		}
		if logic != LogicAnd && ok {
			return true
		}
	}
	return logic == LogicAnd
}

func evalGroup(attrs media.Attributes, group Condition) bool {
	for _, cl := range group {
		if !EvaluateClause(attrs, cl) {
			return false
		}
	}
	return true
}

// EvaluateClause evaluates a single triple.
func EvaluateClause(attrs media.Attributes, cl Clause) bool {
	v, ok := attrs.Lookup(cl.Attribute)
	if !ok || len(cl.Operand.Values) == 0 {
		return false
	}
	if v.IsList {
		return evalList(v.List, cl.Operator, cl.Operand)
	}
	return evalScalar(NewScalar(v.Scalar), cl.Operator, cl.Operand)
}

func evalList(items []string, op Operator, operand Operand) bool {
	switch op {
	case OpIn:
		return intersects(items, operand.Values)
	case OpNotIn:
		return !intersects(items, operand.Values)
	}

	// Every operand value must hold. "==" needs one matching item; the
	// negated and ordering operators need every item to satisfy them.
	for _, want := range operand.Values {
		if op == OpEqual {
			found := false
			for _, item := range items {
				if compare(NewScalar(item), op, want) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
			continue
		}
		for _, item := range items {
			if !compare(NewScalar(item), op, want) {
				return false
			}
		}
	}
	return true
}

func evalScalar(have Scalar, op Operator, operand Operand) bool {
	switch op {
	case OpIn:
		return contains(operand.Values, have)
	case OpNotIn:
		return !contains(operand.Values, have)
	}
	if len(operand.Values) != 1 {
		return false
	}
	return compare(have, op, operand.Values[0])
}

func intersects(items []string, values []Scalar) bool {
	for _, item := range items {
		if contains(values, NewScalar(item)) {
			return true
		}
	}
	return false
}

func contains(values []Scalar, s Scalar) bool {
	for _, v := range values {
		if compare(s, OpEqual, v) {
			return true
		}
	}
	return false
}

// compare is numeric when both sides are numbers and lexical otherwise.
func compare(a Scalar, op Operator, b Scalar) bool {
	var c int
	if a.Numeric && b.Numeric {
		switch {
		case a.Number < b.Number:
			c = -1
		case a.Number > b.Number:
			c = 1
		}
	} else {
		c = strings.Compare(a.Text, b.Text)
	}

	switch op {
	case OpEqual:
		return c == 0
	case OpNotEqual:
		return c != 0
	case OpLess:
		return c < 0
	case OpLessEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterEqual:
		return c >= 0
	}
	return false
}
