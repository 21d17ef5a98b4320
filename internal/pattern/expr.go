// Package pattern implements the MATCH pipeline: the pattern matcher,
// traversal engine, expression evaluator, and result builder — the
// lowest layer in the core's dependency order.
package pattern

// ExprKind tags an expression-tree node.
type ExprKind int

const (
	ExprLiteral ExprKind = iota
	ExprVariable
	ExprProperty  // var.prop or var[prop]
	ExprSubscript // list[i] or map[k]
	ExprBinary
	ExprUnary
	ExprCall
	ExprCase
	ExprList
	ExprMap
	ExprIsNull
	ExprIsNotNull
)

// BinOp enumerates the binary operators: arithmetic, comparison, logical,
// membership, string, set ops on lists.
type BinOp string

const (
	OpAdd      BinOp = "+"
	OpSub      BinOp = "-"
	OpMul      BinOp = "*"
	OpDiv      BinOp = "/"
	OpMod      BinOp = "%"
	OpPow      BinOp = "^"
	OpEq       BinOp = "="
	OpNeq      BinOp = "<>"
	OpLt       BinOp = "<"
	OpLte      BinOp = "<="
	OpGt       BinOp = ">"
	OpGte      BinOp = ">="
	OpAnd      BinOp = "AND"
	OpOr       BinOp = "OR"
	OpXor      BinOp = "XOR"
	OpIn       BinOp = "IN"
	OpNotIn    BinOp = "NOT IN"
	OpStartsWith BinOp = "STARTS WITH"
	OpEndsWith   BinOp = "ENDS WITH"
	OpContains   BinOp = "CONTAINS"
	OpLike       BinOp = "LIKE"
	OpConcat     BinOp = "++"
	OpUnion      BinOp = "UNION"
	OpIntersect  BinOp = "INTERSECT"
	OpExcept     BinOp = "EXCEPT"
)

type UnOp string

const (
	OpNeg UnOp = "-"
	OpNot UnOp = "NOT"
)

// CaseBranch is one WHEN/THEN of a CASE expression.
type CaseBranch struct {
	When *Expr
	Then *Expr
}

// Expr is the expression tree the evaluator walks; constructed by Parse and
// by the factory's deferred-parse policy.
type Expr struct {
	Kind ExprKind

	// Literal
	Lit interface{} // int64, float64, bool, string, nil

	// Variable / Property / Subscript
	Var   string
	Prop  string
	Base  *Expr // for Property/Subscript: the base expression
	Index *Expr // for Subscript

	// Binary / Unary
	BOp   BinOp
	UOp   UnOp
	Left  *Expr
	Right *Expr
	Inner *Expr

	// Call
	Func string
	Args []*Expr

	// Case
	Branches []CaseBranch
	Else     *Expr

	// List / Map literal
	Items []*Expr
	Pairs map[string]*Expr
}

// Literal constructors, used both by Parse and by callers building synthetic
// expressions (e.g. the factory's fail-soft default).
func Lit(v interface{}) *Expr           { return &Expr{Kind: ExprLiteral, Lit: v} }
func NullLit() *Expr                    { return &Expr{Kind: ExprLiteral, Lit: nil} }
func VarExpr(name string) *Expr         { return &Expr{Kind: ExprVariable, Var: name} }
func PropExpr(base *Expr, prop string) *Expr {
	return &Expr{Kind: ExprProperty, Base: base, Prop: prop}
}
func BinaryExpr(op BinOp, l, r *Expr) *Expr { return &Expr{Kind: ExprBinary, BOp: op, Left: l, Right: r} }
func UnaryExpr(op UnOp, e *Expr) *Expr      { return &Expr{Kind: ExprUnary, UOp: op, Inner: e} }
func CallExpr(fn string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Func: fn, Args: args}
}

// aggregateFuncs is the aggregate function family; contains_aggregate uses
// this to recognize a call as aggregate rather than scalar.
var aggregateFuncs = map[string]bool{
	"count": true, "sum": true, "avg": true, "min": true, "max": true, "collect": true,
}

// IsAggregateCall reports whether fn names one of the aggregate functions.
func IsAggregateCall(fn string) bool { return aggregateFuncs[fn] }
