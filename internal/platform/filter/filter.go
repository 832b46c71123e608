// Package filter provides AIP-160 filter expression parsing and SQL translation.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// FieldType is the declared type of a filterable field.
type FieldType int

const (
	// String fields compare against quoted literals.
	String FieldType = iota
	// Int fields compare against integer literals.
	Int
	// Float fields compare against numeric literals.
	Float
	// Bool fields compare against true or false.
	Bool
)

// Field maps one filter identifier onto a SQL column.
type Field struct {
	Column string
	Type   FieldType
}

// Fields is the set of identifiers a filter may reference.
type Fields map[string]Field

// Condition represents a SQL WHERE clause fragment with parameters.
type Condition struct {
	// Clause is the SQL WHERE clause (e.g., "sequel_id = ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// Empty reports whether the condition matches every row.
func (c Condition) Empty() bool {
	return strings.TrimSpace(c.Clause) == ""
}

// Where renders the condition as a WHERE clause, or "" when empty.
func (c Condition) Where() string {
	if c.Empty() {
		return ""
	}
	return " WHERE " + c.Clause
}

// Declarations returns the AIP declarations for fields.
func (f Fields) Declarations() (*filtering.Declarations, error) {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for _, name := range names {
		opts = append(opts, filtering.DeclareIdent(name, f[name].Type.exprType()))
	}
	return filtering.NewDeclarations(opts...)
}

func (t FieldType) exprType() *expr.Type {
	switch t {
	case Int:
		return filtering.TypeInt
	case Float:
		return filtering.TypeFloat
	case Bool:
		return filtering.TypeBool
	default:
		return filtering.TypeString
	}
}

// Parse parses an AIP-160 filter expression and returns a SQL condition.
// Returns an empty condition for an empty filter string.
func Parse(filterStr string, fields Fields) (Condition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return Condition{}, nil
	}
	if len(fields) == 0 {
		return Condition{}, fmt.Errorf("no filterable fields declared")
	}

	decls, err := fields.Declarations()
	if err != nil {
		return Condition{}, fmt.Errorf("create declarations: %w", err)
	}

	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return Condition{}, fmt.Errorf("parse filter: %w", err)
	}

	t := translator{fields: fields}
	return t.expr(parsed.CheckedExpr.Expr)
}

type translator struct {
	fields Fields
}

func (t translator) expr(e *expr.Expr) (Condition, error) {
	if e == nil {
		return Condition{}, nil
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return t.call(kind.CallExpr)
	case *expr.Expr_IdentExpr:
		// A bare boolean identifier, e.g. "active".
		field, ok := t.fields[kind.IdentExpr.Name]
		if !ok || field.Type != Bool {
			return Condition{}, fmt.Errorf("identifier %s is not a boolean field", kind.IdentExpr.Name)
		}
		return Condition{Clause: fmt.Sprintf("%s = ?", field.Column), Params: []any{true}}, nil
	default:
		return Condition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func (t translator) call(call *expr.Expr_Call) (Condition, error) {
	switch call.Function {
	case "_&&_", "AND":
		return t.junction(call.Args, "AND")
	case "_||_", "OR":
		return t.junction(call.Args, "OR")
	case "NOT", "_!_":
		return t.not(call.Args)
	case "_==_", "=":
		return t.comparison(call.Args, "=")
	case "_!=_", "!=":
		return t.comparison(call.Args, "!=")
	case "_<_", "<":
		return t.comparison(call.Args, "<")
	case "_<=_", "<=":
		return t.comparison(call.Args, "<=")
	case "_>_", ">":
		return t.comparison(call.Args, ">")
	case "_>=_", ">=":
		return t.comparison(call.Args, ">=")
	default:
		return Condition{}, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func (t translator) junction(args []*expr.Expr, op string) (Condition, error) {
	if len(args) != 2 {
		return Condition{}, fmt.Errorf("%s requires 2 arguments", op)
	}

	left, err := t.expr(args[0])
	if err != nil {
		return Condition{}, err
	}
	right, err := t.expr(args[1])
	if err != nil {
		return Condition{}, err
	}

	return Condition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(append([]any{}, left.Params...), right.Params...),
	}, nil
}

func (t translator) not(args []*expr.Expr) (Condition, error) {
	if len(args) != 1 {
		return Condition{}, fmt.Errorf("NOT requires 1 argument")
	}
	inner, err := t.expr(args[0])
	if err != nil {
		return Condition{}, err
	}
	return Condition{
		Clause: fmt.Sprintf("NOT (%s)", inner.Clause),
		Params: inner.Params,
	}, nil
}

func (t translator) comparison(args []*expr.Expr, op string) (Condition, error) {
	if len(args) != 2 {
		return Condition{}, fmt.Errorf("comparison requires 2 arguments")
	}

	name, err := extractFieldName(args[0])
	if err != nil {
		return Condition{}, err
	}
	field, ok := t.fields[name]
	if !ok {
		return Condition{}, fmt.Errorf("unknown field: %s", name)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return Condition{}, err
	}

	return Condition{
		Clause: fmt.Sprintf("%s %s ?", field.Column, op),
		Params: []any{value},
	}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	default:
		return nil, fmt.Errorf("expected constant, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}

	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return kind.Uint64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}
