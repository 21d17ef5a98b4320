package pattern

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wbrown/graphql-engine/internal/value"
)

// Binding resolves a variable name to its current Value — rows during
// Filter/Project, or the ExecutionContext's named variables for constants
// bound outside the row.
type Binding interface {
	Get(name string) (value.Value, bool)
}

// MapBinding is the simplest Binding: a plain map, used by tests and by
// Assign/Unwind-extended rows.
type MapBinding map[string]value.Value

func (m MapBinding) Get(name string) (value.Value, bool) { v, ok := m[name]; return v, ok }

// Evaluator is the expression evaluator: arithmetic, comparison, logical,
// membership, string, subscript, attribute, set ops, predicates, the
// function library, and the optimizer helpers (is_constant,
// contains_aggregate, optimize_expression, get_variables).
type Evaluator struct{}

func NewEvaluator() *Evaluator { return &Evaluator{} }

// Eval walks the expression tree against a row binding. Per-row evaluation
// failures are the caller's concern to catch and treat as a soft,
// logged-and-skipped failure — Eval itself returns an error rather than
// panicking so callers can choose.
func (ev *Evaluator) Eval(e *Expr, b Binding) (value.Value, error) {
	if e == nil {
		return value.Null(), nil
	}
	switch e.Kind {
	case ExprLiteral:
		return litValue(e.Lit), nil
	case ExprVariable:
		if v, ok := b.Get(e.Var); ok {
			return v, nil
		}
		return value.Null(), nil
	case ExprProperty:
		base, err := ev.Eval(e.Base, b)
		if err != nil {
			return value.Null(), err
		}
		return propOf(base, e.Prop), nil
	case ExprSubscript:
		base, err := ev.Eval(e.Base, b)
		if err != nil {
			return value.Null(), err
		}
		idx, err := ev.Eval(e.Index, b)
		if err != nil {
			return value.Null(), err
		}
		return subscriptOf(base, idx), nil
	case ExprIsNull:
		v, err := ev.Eval(e.Inner, b)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(v.IsNull()), nil
	case ExprIsNotNull:
		v, err := ev.Eval(e.Inner, b)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(!v.IsNull()), nil
	case ExprUnary:
		inner, err := ev.Eval(e.Inner, b)
		if err != nil {
			return value.Null(), err
		}
		return ev.evalUnary(e.UOp, inner)
	case ExprBinary:
		return ev.evalBinary(e, b)
	case ExprCall:
		return ev.evalCall(e, b)
	case ExprCase:
		for _, branch := range e.Branches {
			cond, err := ev.Eval(branch.When, b)
			if err != nil {
				return value.Null(), err
			}
			if truthy(cond) {
				return ev.Eval(branch.Then, b)
			}
		}
		if e.Else != nil {
			return ev.Eval(e.Else, b)
		}
		return value.Null(), nil
	case ExprList:
		items := make([]value.Value, len(e.Items))
		for i, it := range e.Items {
			v, err := ev.Eval(it, b)
			if err != nil {
				return value.Null(), err
			}
			items[i] = v
		}
		return value.List(items), nil
	case ExprMap:
		m := make(map[string]value.Value, len(e.Pairs))
		for k, it := range e.Pairs {
			v, err := ev.Eval(it, b)
			if err != nil {
				return value.Null(), err
			}
			m[k] = v
		}
		return value.Map(m), nil
	}
	return value.Null(), fmt.Errorf("unhandled expression kind %v", e.Kind)
}

func litValue(lit interface{}) value.Value {
	switch v := lit.(type) {
	case nil:
		return value.Null()
	case int64:
		return value.Int(v)
	case float64:
		return value.Float(v)
	case bool:
		return value.Bool(v)
	case string:
		return value.String(v)
	}
	return value.Null()
}

func propOf(base value.Value, prop string) value.Value {
	if v, ok := base.AsVertex(); ok {
		if p, found := v.Prop(prop); found {
			return p
		}
		return value.NullBecause(value.NullReasonMissingProperty)
	}
	if e, ok := base.AsEdge(); ok {
		if p, found := e.Prop(prop); found {
			return p
		}
		return value.NullBecause(value.NullReasonMissingProperty)
	}
	if m, ok := base.AsMap(); ok {
		if v, found := m[prop]; found {
			return v
		}
		return value.NullBecause(value.NullReasonMissingProperty)
	}
	return value.NullBecause(value.NullReasonTypeMismatch)
}

func subscriptOf(base, idx value.Value) value.Value {
	if lst, ok := base.AsList(); ok {
		if i, ok := idx.AsInt(); ok {
			if i < 0 {
				i += int64(len(lst))
			}
			if i >= 0 && i < int64(len(lst)) {
				return lst[i]
			}
			return value.NullBecause(value.NullReasonOutOfRange)
		}
	}
	if m, ok := base.AsMap(); ok {
		if k, ok := idx.AsString(); ok {
			if v, found := m[k]; found {
				return v
			}
			return value.NullBecause(value.NullReasonMissingProperty)
		}
	}
	return value.NullBecause(value.NullReasonTypeMismatch)
}

func truthy(v value.Value) bool {
	b, ok := v.AsBool()
	return ok && b
}

func (ev *Evaluator) evalUnary(op UnOp, v value.Value) (value.Value, error) {
	switch op {
	case OpNeg:
		if i, ok := v.AsInt(); ok {
			return value.Int(-i), nil
		}
		if f, ok := v.AsFloat(); ok {
			return value.Float(-f), nil
		}
		return value.NullBecause(value.NullReasonTypeMismatch), nil
	case OpNot:
		if v.IsNull() {
			return value.Null(), nil
		}
		return value.Bool(!truthy(v)), nil
	}
	return value.Null(), fmt.Errorf("unknown unary operator %v", op)
}

func (ev *Evaluator) evalBinary(e *Expr, b Binding) (value.Value, error) {
	// AND/OR short-circuit with SQL three-valued-logic-ish Null propagation.
	switch e.BOp {
	case OpAnd:
		l, err := ev.Eval(e.Left, b)
		if err != nil {
			return value.Null(), err
		}
		if !l.IsNull() && !truthy(l) {
			return value.Bool(false), nil
		}
		r, err := ev.Eval(e.Right, b)
		if err != nil {
			return value.Null(), err
		}
		if !r.IsNull() && !truthy(r) {
			return value.Bool(false), nil
		}
		if l.IsNull() || r.IsNull() {
			return value.Null(), nil
		}
		return value.Bool(true), nil
	case OpOr:
		l, err := ev.Eval(e.Left, b)
		if err != nil {
			return value.Null(), err
		}
		if truthy(l) {
			return value.Bool(true), nil
		}
		r, err := ev.Eval(e.Right, b)
		if err != nil {
			return value.Null(), err
		}
		if truthy(r) {
			return value.Bool(true), nil
		}
		if l.IsNull() || r.IsNull() {
			return value.Null(), nil
		}
		return value.Bool(false), nil
	case OpXor:
		l, err := ev.Eval(e.Left, b)
		if err != nil {
			return value.Null(), err
		}
		r, err := ev.Eval(e.Right, b)
		if err != nil {
			return value.Null(), err
		}
		if l.IsNull() || r.IsNull() {
			return value.Null(), nil
		}
		return value.Bool(truthy(l) != truthy(r)), nil
	}

	l, err := ev.Eval(e.Left, b)
	if err != nil {
		return value.Null(), err
	}
	r, err := ev.Eval(e.Right, b)
	if err != nil {
		return value.Null(), err
	}
	return ev.applyBinary(e.BOp, l, r)
}

func (ev *Evaluator) applyBinary(op BinOp, l, r value.Value) (value.Value, error) {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow:
		return arithmetic(op, l, r)
	case OpEq:
		if l.IsNull() || r.IsNull() {
			return value.Null(), nil
		}
		return value.Bool(value.Equal(l, r)), nil
	case OpNeq:
		if l.IsNull() || r.IsNull() {
			return value.Null(), nil
		}
		return value.Bool(!value.Equal(l, r)), nil
	case OpLt, OpLte, OpGt, OpGte:
		if l.IsNull() || r.IsNull() {
			return value.Null(), nil
		}
		c := value.Compare(l, r)
		switch op {
		case OpLt:
			return value.Bool(c < 0), nil
		case OpLte:
			return value.Bool(c <= 0), nil
		case OpGt:
			return value.Bool(c > 0), nil
		default:
			return value.Bool(c >= 0), nil
		}
	case OpIn, OpNotIn:
		items, ok := r.AsList()
		if !ok {
			if set, ok2 := r.AsSet(); ok2 {
				items = set
			} else {
				return value.NullBecause(value.NullReasonTypeMismatch), nil
			}
		}
		found := false
		for _, it := range items {
			if value.Equal(l, it) {
				found = true
				break
			}
		}
		if op == OpNotIn {
			found = !found
		}
		return value.Bool(found), nil
	case OpStartsWith, OpEndsWith, OpContains, OpLike:
		ls, lok := l.AsString()
		rs, rok := r.AsString()
		if !lok || !rok {
			return value.NullBecause(value.NullReasonTypeMismatch), nil
		}
		switch op {
		case OpStartsWith:
			return value.Bool(strings.HasPrefix(ls, rs)), nil
		case OpEndsWith:
			return value.Bool(strings.HasSuffix(ls, rs)), nil
		case OpContains:
			return value.Bool(strings.Contains(ls, rs)), nil
		default: // LIKE: '%' wildcard only, SQL-lite semantics
			return value.Bool(likeMatch(ls, rs)), nil
		}
	case OpConcat:
		ls, lok := l.AsString()
		rs, rok := r.AsString()
		if lok && rok {
			return value.String(ls + rs), nil
		}
		litems, lok2 := l.AsList()
		ritems, rok2 := r.AsList()
		if lok2 && rok2 {
			return value.List(append(append([]value.Value{}, litems...), ritems...)), nil
		}
		return value.NullBecause(value.NullReasonTypeMismatch), nil
	case OpUnion, OpIntersect, OpExcept:
		return setOp(op, l, r), nil
	}
	return value.Null(), fmt.Errorf("unknown binary operator %v", op)
}

func arithmetic(op BinOp, l, r value.Value) (value.Value, error) {
	li, liok := l.AsInt()
	ri, riok := r.AsInt()
	if liok && riok && op != OpDiv {
		switch op {
		case OpAdd:
			return value.Int(li + ri), nil
		case OpSub:
			return value.Int(li - ri), nil
		case OpMul:
			return value.Int(li * ri), nil
		case OpMod:
			if ri == 0 {
				return value.NullBecause(value.NullReasonDivideByZero), nil
			}
			return value.Int(li % ri), nil
		case OpPow:
			return value.Float(math.Pow(float64(li), float64(ri))), nil
		}
	}
	lf, lok := l.AsFloat()
	rf, rok := r.AsFloat()
	if !lok || !rok {
		return value.NullBecause(value.NullReasonTypeMismatch), nil
	}
	switch op {
	case OpAdd:
		return value.Float(lf + rf), nil
	case OpSub:
		return value.Float(lf - rf), nil
	case OpMul:
		return value.Float(lf * rf), nil
	case OpDiv:
		if rf == 0 {
			return value.NullBecause(value.NullReasonDivideByZero), nil
		}
		return value.Float(lf / rf), nil
	case OpMod:
		if rf == 0 {
			return value.NullBecause(value.NullReasonDivideByZero), nil
		}
		return value.Float(math.Mod(lf, rf)), nil
	case OpPow:
		return value.Float(math.Pow(lf, rf)), nil
	}
	return value.Null(), fmt.Errorf("unknown arithmetic operator %v", op)
}

func likeMatch(s, pattern string) bool {
	parts := strings.Split(pattern, "%")
	if len(parts) == 1 {
		return s == pattern
	}
	idx := 0
	for i, part := range parts {
		if part == "" {
			continue
		}
		pos := strings.Index(s[idx:], part)
		if pos < 0 {
			return false
		}
		if i == 0 && pos != 0 {
			return false
		}
		idx += pos + len(part)
	}
	if last := parts[len(parts)-1]; last != "" && !strings.HasSuffix(s, last) {
		return false
	}
	return true
}

func setOp(op BinOp, l, r value.Value) value.Value {
	litems, _ := l.AsList()
	ritems, _ := r.AsList()
	switch op {
	case OpUnion:
		return value.Set(append(append([]value.Value{}, litems...), ritems...))
	case OpIntersect:
		var out []value.Value
		for _, a := range litems {
			for _, b := range ritems {
				if value.Equal(a, b) {
					out = append(out, a)
					break
				}
			}
		}
		return value.Set(out)
	case OpExcept:
		var out []value.Value
		for _, a := range litems {
			found := false
			for _, b := range ritems {
				if value.Equal(a, b) {
					found = true
					break
				}
			}
			if !found {
				out = append(out, a)
			}
		}
		return value.Set(out)
	}
	return value.Null()
}

// evalCall implements the scalar function library. Aggregate functions are
// handled by the Aggregate operator, not here — IsAggregateCall lets
// callers route around this function for those names.
func (ev *Evaluator) evalCall(e *Expr, b Binding) (value.Value, error) {
	args := make([]value.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := ev.Eval(a, b)
		if err != nil {
			return value.Null(), err
		}
		args[i] = v
	}
	fn := strings.ToLower(e.Func)
	switch fn {
	case "abs":
		if len(args) != 1 {
			return value.Null(), fmt.Errorf("abs takes 1 argument")
		}
		if f, ok := args[0].AsFloat(); ok {
			if i, ok := args[0].AsInt(); ok {
				if i < 0 {
					i = -i
				}
				return value.Int(i), nil
			}
			return value.Float(math.Abs(f)), nil
		}
		return value.Null(), nil
	case "length", "size":
		if len(args) != 1 {
			return value.Null(), fmt.Errorf("%s takes 1 argument", fn)
		}
		if s, ok := args[0].AsString(); ok {
			return value.Int(int64(len(s))), nil
		}
		if l, ok := args[0].AsList(); ok {
			return value.Int(int64(len(l))), nil
		}
		if p, ok := args[0].AsPath(); ok {
			return value.Int(int64(p.Length())), nil
		}
		return value.Null(), nil
	case "tostring":
		if len(args) != 1 {
			return value.Null(), fmt.Errorf("toString takes 1 argument")
		}
		if args[0].IsNull() {
			return value.Null(), nil
		}
		return value.String(args[0].String()), nil
	case "toint":
		if len(args) != 1 {
			return value.Null(), fmt.Errorf("toInt takes 1 argument")
		}
		if i, ok := args[0].AsInt(); ok {
			return value.Int(i), nil
		}
		if f, ok := args[0].AsFloat(); ok {
			return value.Int(int64(f)), nil
		}
		if s, ok := args[0].AsString(); ok {
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return value.Null(), nil
			}
			return value.Int(n), nil
		}
		return value.Null(), nil
	case "tofloat":
		if len(args) != 1 {
			return value.Null(), fmt.Errorf("toFloat takes 1 argument")
		}
		if f, ok := args[0].AsFloat(); ok {
			return value.Float(f), nil
		}
		if s, ok := args[0].AsString(); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return value.Null(), nil
			}
			return value.Float(f), nil
		}
		return value.Null(), nil
	case "toboolean":
		if len(args) != 1 {
			return value.Null(), fmt.Errorf("toBoolean takes 1 argument")
		}
		if s, ok := args[0].AsString(); ok {
			return value.Bool(strings.EqualFold(s, "true")), nil
		}
		if b, ok := args[0].AsBool(); ok {
			return value.Bool(b), nil
		}
		return value.Null(), nil
	case "substring":
		s, _ := args[0].AsString()
		start, _ := args[1].AsInt()
		if start < 0 || start > int64(len(s)) {
			return value.String(""), nil
		}
		if len(args) == 3 {
			n, _ := args[2].AsInt()
			end := start + n
			if end > int64(len(s)) {
				end = int64(len(s))
			}
			return value.String(s[start:end]), nil
		}
		return value.String(s[start:]), nil
	case "replace":
		s, _ := args[0].AsString()
		old, _ := args[1].AsString()
		nw, _ := args[2].AsString()
		return value.String(strings.ReplaceAll(s, old, nw)), nil
	case "concat":
		var b strings.Builder
		for _, a := range args {
			b.WriteString(a.String())
		}
		return value.String(b.String()), nil
	case "coalesce":
		for _, a := range args {
			if !a.IsNull() {
				return a, nil
			}
		}
		return value.Null(), nil
	case "head":
		if l, ok := args[0].AsList(); ok && len(l) > 0 {
			return l[0], nil
		}
		return value.Null(), nil
	case "last":
		if l, ok := args[0].AsList(); ok && len(l) > 0 {
			return l[len(l)-1], nil
		}
		return value.Null(), nil
	case "reverse":
		if l, ok := args[0].AsList(); ok {
			out := make([]value.Value, len(l))
			for i, v := range l {
				out[len(l)-1-i] = v
			}
			return value.List(out), nil
		}
		if s, ok := args[0].AsString(); ok {
			runes := []rune(s)
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
			return value.String(string(runes)), nil
		}
		return value.Null(), nil
	case "keys":
		if v, ok := args[0].AsVertex(); ok {
			var keys []value.Value
			for k := range v.MergedProps() {
				keys = append(keys, value.String(k))
			}
			return value.List(keys), nil
		}
		if m, ok := args[0].AsMap(); ok {
			var keys []value.Value
			for k := range m {
				keys = append(keys, value.String(k))
			}
			return value.List(keys), nil
		}
		return value.Null(), nil
	case "values":
		if v, ok := args[0].AsVertex(); ok {
			var vals []value.Value
			for _, val := range v.MergedProps() {
				vals = append(vals, val)
			}
			return value.List(vals), nil
		}
		if m, ok := args[0].AsMap(); ok {
			var vals []value.Value
			for _, val := range m {
				vals = append(vals, val)
			}
			return value.List(vals), nil
		}
		return value.Null(), nil
	case "properties":
		if v, ok := args[0].AsVertex(); ok {
			return value.Map(v.MergedProps()), nil
		}
		if ed, ok := args[0].AsEdge(); ok {
			return value.Map(ed.Props), nil
		}
		return value.Null(), nil
	}
	return value.Null(), fmt.Errorf("unknown function %q", e.Func)
}

// IsConstant reports whether expr contains no variable/property reference
// and no function call — true iff the optimizer can fold it once.
func IsConstant(e *Expr) bool {
	if e == nil {
		return true
	}
	switch e.Kind {
	case ExprLiteral:
		return true
	case ExprVariable, ExprProperty, ExprCall:
		return false
	case ExprSubscript:
		return IsConstant(e.Base) && IsConstant(e.Index)
	case ExprUnary, ExprIsNull, ExprIsNotNull:
		return IsConstant(e.Inner)
	case ExprBinary:
		return IsConstant(e.Left) && IsConstant(e.Right)
	case ExprCase:
		for _, br := range e.Branches {
			if !IsConstant(br.When) || !IsConstant(br.Then) {
				return false
			}
		}
		return IsConstant(e.Else)
	case ExprList:
		for _, it := range e.Items {
			if !IsConstant(it) {
				return false
			}
		}
		return true
	case ExprMap:
		for _, it := range e.Pairs {
			if !IsConstant(it) {
				return false
			}
		}
		return true
	}
	return false
}

// ContainsAggregate reports whether any sub-expression is an aggregate
// function call.
func ContainsAggregate(e *Expr) bool {
	if e == nil {
		return false
	}
	if e.Kind == ExprCall && IsAggregateCall(strings.ToLower(e.Func)) {
		return true
	}
	switch e.Kind {
	case ExprUnary, ExprIsNull, ExprIsNotNull:
		return ContainsAggregate(e.Inner)
	case ExprSubscript:
		return ContainsAggregate(e.Base) || ContainsAggregate(e.Index)
	case ExprProperty:
		return ContainsAggregate(e.Base)
	case ExprBinary:
		return ContainsAggregate(e.Left) || ContainsAggregate(e.Right)
	case ExprCall:
		for _, a := range e.Args {
			if ContainsAggregate(a) {
				return true
			}
		}
	case ExprCase:
		for _, br := range e.Branches {
			if ContainsAggregate(br.When) || ContainsAggregate(br.Then) {
				return true
			}
		}
		return ContainsAggregate(e.Else)
	case ExprList:
		for _, it := range e.Items {
			if ContainsAggregate(it) {
				return true
			}
		}
	case ExprMap:
		for _, it := range e.Pairs {
			if ContainsAggregate(it) {
				return true
			}
		}
	}
	return false
}

// GetVariables returns the free variables referenced by expr.
func GetVariables(e *Expr) []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(*Expr)
	walk = func(e *Expr) {
		if e == nil {
			return
		}
		switch e.Kind {
		case ExprVariable:
			if !seen[e.Var] {
				seen[e.Var] = true
				out = append(out, e.Var)
			}
		case ExprProperty:
			walk(e.Base)
		case ExprSubscript:
			walk(e.Base)
			walk(e.Index)
		case ExprUnary, ExprIsNull, ExprIsNotNull:
			walk(e.Inner)
		case ExprBinary:
			walk(e.Left)
			walk(e.Right)
		case ExprCall:
			for _, a := range e.Args {
				walk(a)
			}
		case ExprCase:
			for _, br := range e.Branches {
				walk(br.When)
				walk(br.Then)
			}
			walk(e.Else)
		case ExprList:
			for _, it := range e.Items {
				walk(it)
			}
		case ExprMap:
			for _, it := range e.Pairs {
				walk(it)
			}
		}
	}
	walk(e)
	return out
}

// OptimizeExpression constant-folds integer +/× subtrees (and recurses into
// every other node kind).
func OptimizeExpression(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ExprBinary:
		e.Left = OptimizeExpression(e.Left)
		e.Right = OptimizeExpression(e.Right)
		if (e.BOp == OpAdd || e.BOp == OpMul) && e.Left.Kind == ExprLiteral && e.Right.Kind == ExprLiteral {
			li, liok := litValue(e.Left.Lit).AsInt()
			ri, riok := litValue(e.Right.Lit).AsInt()
			if liok && riok {
				if e.BOp == OpAdd {
					return Lit(li + ri)
				}
				return Lit(li * ri)
			}
		}
		return e
	case ExprUnary:
		e.Inner = OptimizeExpression(e.Inner)
		return e
	case ExprIsNull, ExprIsNotNull:
		e.Inner = OptimizeExpression(e.Inner)
		return e
	case ExprProperty:
		e.Base = OptimizeExpression(e.Base)
		return e
	case ExprSubscript:
		e.Base = OptimizeExpression(e.Base)
		e.Index = OptimizeExpression(e.Index)
		return e
	case ExprCall:
		for i, a := range e.Args {
			e.Args[i] = OptimizeExpression(a)
		}
		return e
	case ExprCase:
		for i, br := range e.Branches {
			e.Branches[i].When = OptimizeExpression(br.When)
			e.Branches[i].Then = OptimizeExpression(br.Then)
		}
		e.Else = OptimizeExpression(e.Else)
		return e
	case ExprList:
		for i, it := range e.Items {
			e.Items[i] = OptimizeExpression(it)
		}
		return e
	case ExprMap:
		for k, it := range e.Pairs {
			e.Pairs[k] = OptimizeExpression(it)
		}
		return e
	}
	return e
}
