package operator

import (
	"math"
	"math/rand"

	"github.com/wbrown/graphql-engine/internal/pattern"
	"github.com/wbrown/graphql-engine/internal/plan"
	"github.com/wbrown/graphql-engine/internal/value"
)

// toRows converts any predecessor ExecutionResult to a (columns, rows) pair,
// the common entry shape every result-processing operator works from.
func toRows(r value.ExecutionResult, defaultCol string) ([]string, []value.Row) {
	ds := r.ToDataSet(defaultCol)
	return ds.Columns, ds.Rows
}

// Filter evaluates a boolean expression per row of the predecessor's
// result converted to a DataSet (a non-DataSet variant becomes one "value"
// column) and always emits a DataSet; the input variant is not passed
// through.
type Filter struct {
	Base
	Expr *pattern.Expr
}

func NewFilter(id int, inputs []Executor, expr *pattern.Expr) *Filter {
	return &Filter{Base: NewBase(id, "Filter", "per-row boolean predicate", inputs), Expr: expr}
}

func (o *Filter) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	in, ok := SinglePredecessorResult(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	cols, rows := toRows(in, "value")
	ev := pattern.NewEvaluator()
	out := make([]value.Row, 0, len(rows))
	for _, row := range rows {
		keep, err := evalRowBool(ev, o.Expr, rowBinding{cols, row})
		if err != nil {
			ctx.Log.Warn().Err(err).Msg("filter expression failed on row, skipping")
			continue
		}
		if keep {
			out = append(out, row)
		}
	}
	o.Stats().AddConsumed(int64(len(rows)))
	o.Stats().AddProduced(int64(len(out)))
	return value.DataSetResult(value.MustDataSet(cols, out)), nil
}

// Project evaluates (alias, expression) pairs; accepts every input
// variant, always emits a DataSet.
type Project struct {
	Base
	Projections []plan.Projection
	Exprs       []*pattern.Expr
}

func NewProject(id int, inputs []Executor, projections []plan.Projection, exprs []*pattern.Expr) *Project {
	return &Project{Base: NewBase(id, "Project", "evaluates projection expressions", inputs), Projections: projections, Exprs: exprs}
}

func (o *Project) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	in, ok := SinglePredecessorResult(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	cols, rows := toRows(in, "value")
	outCols := make([]string, len(o.Projections))
	for i, p := range o.Projections {
		outCols[i] = p.Alias
	}
	ev := pattern.NewEvaluator()
	outRows := make([]value.Row, 0, len(rows))
	for _, row := range rows {
		binding := rowBinding{cols, row}
		outRow := make(value.Row, len(o.Exprs))
		for i, e := range o.Exprs {
			v, err := ev.Eval(e, binding)
			if err != nil {
				ctx.Log.Warn().Err(err).Msg("project expression failed, emitting Null")
				v = value.Null()
			}
			outRow[i] = v
		}
		outRows = append(outRows, outRow)
	}
	o.Stats().AddConsumed(int64(len(rows)))
	o.Stats().AddProduced(int64(len(outRows)))
	return value.DataSetResult(value.MustDataSet(outCols, outRows)), nil
}

// Limit skips the first N rows and emits the next M.
type Limit struct {
	Base
	Skip  int64
	Count int64
}

func NewLimit(id int, inputs []Executor, skip, count int64) *Limit {
	return &Limit{Base: NewBase(id, "Limit", "skip/count pagination", inputs), Skip: skip, Count: count}
}

func (o *Limit) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	in, ok := SinglePredecessorResult(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	cols, rows := toRows(in, "value")
	skip := o.Skip
	if skip < 0 {
		skip = 0
	}
	if skip > int64(len(rows)) {
		skip = int64(len(rows))
	}
	rows = rows[skip:]
	if o.Count >= 0 && int64(len(rows)) > o.Count {
		rows = rows[:o.Count]
	}
	o.Stats().AddProduced(int64(len(rows)))
	return value.DataSetResult(value.MustDataSet(cols, rows)), nil
}

// Sort is a stable sort by an (expression, ASC/DESC) list.
type Sort struct {
	Base
	Items []SortKey
}

// SortKey is a compiled sort item: the expression to sort by and direction.
type SortKey struct {
	Expr *pattern.Expr
	Desc bool
}

func NewSort(id int, inputs []Executor, items []SortKey) *Sort {
	return &Sort{Base: NewBase(id, "Sort", "stable multi-key sort", inputs), Items: items}
}

func (o *Sort) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	in, ok := SinglePredecessorResult(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	cols, rows := toRows(in, "value")
	sorted := sortRows(ctx, cols, rows, o.Items)
	o.Stats().AddProduced(int64(len(sorted)))
	return value.DataSetResult(value.MustDataSet(cols, sorted)), nil
}

func sortRows(ctx *ExecContext, cols []string, rows []value.Row, items []SortKey) []value.Row {
	ev := pattern.NewEvaluator()
	keys := make([][]value.Value, len(rows))
	for i, row := range rows {
		binding := rowBinding{cols, row}
		rowKeys := make([]value.Value, len(items))
		for j, it := range items {
			v, err := ev.Eval(it.Expr, binding)
			if err != nil {
				ctx.Log.Warn().Err(err).Msg("sort expression failed, treating as Null")
				v = value.Null()
			}
			rowKeys[j] = v
		}
		keys[i] = rowKeys
	}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	less := func(a, b int) bool {
		for j, it := range items {
			c := value.Compare(keys[a][j], keys[b][j])
			if c == 0 {
				continue
			}
			if it.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	}
	stableSortInts(idx, less)
	out := make([]value.Row, len(rows))
	for i, oi := range idx {
		out[i] = rows[oi]
	}
	return out
}

// stableSortInts is a small bottom-up stable merge sort over an index slice
// — kept local rather than depending on sort.SliceStable's reflection-based
// comparator for the hot row-ordering path.
func stableSortInts(idx []int, less func(a, b int) bool) {
	n := len(idx)
	for gap := 1; gap < n; gap *= 2 {
		for i := 0; i+gap < n; i += 2 * gap {
			mergeStable(idx, i, i+gap, minInt(i+2*gap, n), less)
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func mergeStable(idx []int, lo, mid, hi int, less func(a, b int) bool) {
	left := append([]int{}, idx[lo:mid]...)
	right := append([]int{}, idx[mid:hi]...)
	i, j, k := 0, 0, lo
	for i < len(left) && j < len(right) {
		if less(right[j], left[i]) {
			idx[k] = right[j]
			j++
		} else {
			idx[k] = left[i]
			i++
		}
		k++
	}
	for i < len(left) {
		idx[k] = left[i]
		i++
		k++
	}
	for j < len(right) {
		idx[k] = right[j]
		j++
		k++
	}
}

// TopN is a bounded top-k by sort key, stable.
type TopN struct {
	Base
	K     int
	Items []SortKey
}

func NewTopN(id int, inputs []Executor, k int, items []SortKey) *TopN {
	return &TopN{Base: NewBase(id, "TopN", "bounded top-k by sort key", inputs), K: k, Items: items}
}

func (o *TopN) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	in, ok := SinglePredecessorResult(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	cols, rows := toRows(in, "value")
	sorted := sortRows(ctx, cols, rows, o.Items)
	if o.K >= 0 && len(sorted) > o.K {
		sorted = sorted[:o.K]
	}
	o.Stats().AddProduced(int64(len(sorted)))
	return value.DataSetResult(value.MustDataSet(cols, sorted)), nil
}

// Sample is unbiased reservoir sampling of k rows.
type Sample struct {
	Base
	K    int
	Rand *rand.Rand
}

func NewSample(id int, inputs []Executor, k int, r *rand.Rand) *Sample {
	if r == nil {
		r = rand.New(rand.NewSource(1))
	}
	return &Sample{Base: NewBase(id, "Sample", "reservoir sampling", inputs), K: k, Rand: r}
}

func (o *Sample) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	in, ok := SinglePredecessorResult(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	cols, rows := toRows(in, "value")
	if o.K >= len(rows) {
		o.Stats().AddProduced(int64(len(rows)))
		return value.DataSetResult(value.MustDataSet(cols, rows)), nil
	}
	reservoir := make([]value.Row, o.K)
	copy(reservoir, rows[:o.K])
	for i := o.K; i < len(rows); i++ {
		j := o.Rand.Intn(i + 1)
		if j < o.K {
			reservoir[j] = rows[i]
		}
	}
	o.Stats().AddProduced(int64(len(reservoir)))
	return value.DataSetResult(value.MustDataSet(cols, reservoir)), nil
}

// Aggregate is hash-grouped aggregation with SQL Null semantics: SUM/AVG
// skip Null, COUNT(expr) skips Null, COUNT(*) counts all rows.
type Aggregate struct {
	Base
	GroupBy  []string
	GroupExprs []*pattern.Expr
	Funcs    []AggSpec
}

// AggSpec is one compiled aggregate-function call.
type AggSpec struct {
	Func     string // COUNT, SUM, AVG, MIN, MAX, COLLECT, COLLECT_SET, BIT_AND, BIT_OR, BIT_XOR, STD, VARIANCE
	Expr     *pattern.Expr // nil means COUNT(*)
	Distinct bool
	Alias    string
}

func NewAggregate(id int, inputs []Executor, groupBy []string, groupExprs []*pattern.Expr, funcs []AggSpec) *Aggregate {
	return &Aggregate{Base: NewBase(id, "Aggregate", "hash-grouped aggregation", inputs), GroupBy: groupBy, GroupExprs: groupExprs, Funcs: funcs}
}

type aggGroup struct {
	keyRow value.Row
	rows   []value.Row
}

func (o *Aggregate) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	in, ok := SinglePredecessorResult(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	cols, rows := toRows(in, "value")
	ev := pattern.NewEvaluator()

	groups := make(map[string]*aggGroup)
	var order []string
	for _, row := range rows {
		binding := rowBinding{cols, row}
		keyRow := make(value.Row, len(o.GroupExprs))
		for i, e := range o.GroupExprs {
			v, err := ev.Eval(e, binding)
			if err != nil {
				v = value.Null()
			}
			keyRow[i] = v
		}
		key := rowKeyString(keyRow)
		g, exists := groups[key]
		if !exists {
			g = &aggGroup{keyRow: keyRow}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, row)
	}
	if len(groups) == 0 {
		// Empty input: aggregates over zero groups still define defaults
		// (COUNT=0, SUM=0, AVG=Null, MIN/MAX=Null, COLLECT=empty list) when
		// there is no GROUP BY at all.
		if len(o.GroupBy) == 0 {
			outCols := append(append([]string{}, o.GroupBy...), aggAliases(o.Funcs)...)
			row := make(value.Row, len(outCols))
			for i := range o.GroupBy {
				row[i] = value.Null()
			}
			for i, f := range o.Funcs {
				row[len(o.GroupBy)+i] = emptyAggResult(f.Func)
			}
			return value.DataSetResult(value.MustDataSet(outCols, []value.Row{row})), nil
		}
		outCols := append(append([]string{}, o.GroupBy...), aggAliases(o.Funcs)...)
		return value.DataSetResult(value.MustDataSet(outCols, nil)), nil
	}

	outCols := append(append([]string{}, o.GroupBy...), aggAliases(o.Funcs)...)
	outRows := make([]value.Row, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		row := make(value.Row, 0, len(outCols))
		row = append(row, g.keyRow...)
		for _, f := range o.Funcs {
			row = append(row, computeAgg(ctx, ev, cols, g.rows, f))
		}
		outRows = append(outRows, row)
	}

	o.Stats().AddConsumed(int64(len(rows)))
	o.Stats().AddProduced(int64(len(outRows)))
	return value.DataSetResult(value.MustDataSet(outCols, outRows)), nil
}

func aggAliases(funcs []AggSpec) []string {
	out := make([]string, len(funcs))
	for i, f := range funcs {
		out[i] = f.Alias
	}
	return out
}

func emptyAggResult(fn string) value.Value {
	switch fn {
	case "COUNT":
		return value.Int(0)
	case "SUM":
		return value.Int(0)
	case "COLLECT", "COLLECT_SET":
		return value.List(nil)
	default:
		return value.Null()
	}
}

func rowKeyString(row value.Row) string {
	var b []byte
	for _, v := range row {
		b = append(b, v.String()...)
		b = append(b, 0x1f)
	}
	return string(b)
}

func computeAgg(ctx *ExecContext, ev *pattern.Evaluator, cols []string, rows []value.Row, f AggSpec) value.Value {
	var vals []value.Value
	for _, row := range rows {
		if f.Expr == nil {
			continue // COUNT(*) doesn't evaluate an expression
		}
		v, err := ev.Eval(f.Expr, rowBinding{cols, row})
		if err != nil {
			ctx.Log.Warn().Err(err).Msg("aggregate expression failed on row, skipping")
			continue
		}
		vals = append(vals, v)
	}
	if f.Distinct {
		vals = value.DedupValues(vals)
	}

	switch f.Func {
	case "COUNT":
		if f.Expr == nil {
			return value.Int(int64(len(rows)))
		}
		n := int64(0)
		for _, v := range vals {
			if !v.IsNull() {
				n++
			}
		}
		return value.Int(n)
	case "SUM":
		sum := 0.0
		isInt := true
		intSum := int64(0)
		any := false
		for _, v := range vals {
			if v.IsNull() {
				continue
			}
			any = true
			if i, ok := v.AsInt(); ok && isInt {
				intSum += i
			} else {
				isInt = false
			}
			if f, ok := v.AsFloat(); ok {
				sum += f
			}
		}
		if !any {
			return value.Int(0)
		}
		if isInt {
			return value.Int(intSum)
		}
		return value.Float(sum)
	case "AVG":
		sum, n := 0.0, 0
		for _, v := range vals {
			if v.IsNull() {
				continue
			}
			if f, ok := v.AsFloat(); ok {
				sum += f
				n++
			}
		}
		if n == 0 {
			return value.Null()
		}
		return value.Float(sum / float64(n))
	case "MIN":
		return foldCompare(vals, -1)
	case "MAX":
		return foldCompare(vals, 1)
	case "COLLECT":
		nonNull := make([]value.Value, 0, len(vals))
		for _, v := range vals {
			if !v.IsNull() {
				nonNull = append(nonNull, v)
			}
		}
		return value.List(nonNull)
	case "COLLECT_SET":
		nonNull := make([]value.Value, 0, len(vals))
		for _, v := range vals {
			if !v.IsNull() {
				nonNull = append(nonNull, v)
			}
		}
		return value.Set(nonNull)
	case "BIT_AND", "BIT_OR", "BIT_XOR":
		return foldBits(vals, f.Func)
	case "STD", "VARIANCE":
		return foldVariance(vals, f.Func == "STD")
	}
	return value.Null()
}

func foldCompare(vals []value.Value, sign int) value.Value {
	var best value.Value
	found := false
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		if !found {
			best = v
			found = true
			continue
		}
		c := value.Compare(v, best)
		if (sign < 0 && c < 0) || (sign > 0 && c > 0) {
			best = v
		}
	}
	if !found {
		return value.Null()
	}
	return best
}

func foldBits(vals []value.Value, fn string) value.Value {
	var acc int64
	found := false
	for _, v := range vals {
		i, ok := v.AsInt()
		if !ok {
			continue
		}
		if !found {
			acc = i
			found = true
			continue
		}
		switch fn {
		case "BIT_AND":
			acc &= i
		case "BIT_OR":
			acc |= i
		case "BIT_XOR":
			acc ^= i
		}
	}
	if !found {
		return value.Null()
	}
	return value.Int(acc)
}

func foldVariance(vals []value.Value, stddev bool) value.Value {
	var nums []float64
	for _, v := range vals {
		if f, ok := v.AsFloat(); ok && !v.IsNull() {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return value.Null()
	}
	mean := 0.0
	for _, n := range nums {
		mean += n
	}
	mean /= float64(len(nums))
	variance := 0.0
	for _, n := range nums {
		variance += (n - mean) * (n - mean)
	}
	variance /= float64(len(nums))
	if stddev {
		return value.Float(math.Sqrt(variance))
	}
	return value.Float(variance)
}

// Dedup performs full-row hash dedup or dedup by a key column subset.
type Dedup struct {
	Base
	Keys []string // empty => full-row dedup
}

func NewDedup(id int, inputs []Executor, keys []string) *Dedup {
	return &Dedup{Base: NewBase(id, "Dedup", "full-row or by-key dedup", inputs), Keys: keys}
}

func (o *Dedup) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	in, ok := SinglePredecessorResult(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	cols, rows := toRows(in, "value")
	seen := make(map[string]bool, len(rows))
	out := make([]value.Row, 0, len(rows))
	for _, row := range rows {
		var key value.Row
		if len(o.Keys) == 0 {
			key = row
		} else {
			key = make(value.Row, len(o.Keys))
			for i, k := range o.Keys {
				for ci, c := range cols {
					if c == k {
						key[i] = row[ci]
						break
					}
				}
			}
		}
		ks := rowKeyString(key)
		if seen[ks] {
			continue
		}
		seen[ks] = true
		out = append(out, row)
	}
	o.Stats().AddProduced(int64(len(out)))
	return value.DataSetResult(value.MustDataSet(cols, out)), nil
}

// Unwind requires expr to evaluate to a list; it emits one row per element
// with alias bound as a new column.
type Unwind struct {
	Base
	Expr  *pattern.Expr
	Alias string
}

func NewUnwind(id int, inputs []Executor, expr *pattern.Expr, alias string) *Unwind {
	return &Unwind{Base: NewBase(id, "Unwind", "expands a list-valued expression into rows", inputs), Expr: expr, Alias: alias}
}

func (o *Unwind) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	in, ok := SinglePredecessorResult(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	cols, rows := toRows(in, "value")
	outCols := append(append([]string{}, cols...), o.Alias)
	ev := pattern.NewEvaluator()
	var outRows []value.Row
	for _, row := range rows {
		v, err := ev.Eval(o.Expr, rowBinding{cols, row})
		if err != nil {
			ctx.Log.Warn().Err(err).Msg("unwind expression failed, skipping row")
			continue
		}
		items, ok := v.AsList()
		if !ok {
			items, ok = v.AsSet()
			if !ok {
				continue
			}
		}
		for _, item := range items {
			newRow := append(row.Clone(), item)
			outRows = append(outRows, newRow)
		}
	}
	o.Stats().AddProduced(int64(len(outRows)))
	return value.DataSetResult(value.MustDataSet(outCols, outRows)), nil
}

// Assign extends each row with new columns from a list of (var, expr)
// pairs.
type Assign struct {
	Base
	Vars  []string
	Exprs []*pattern.Expr
}

func NewAssign(id int, inputs []Executor, vars []string, exprs []*pattern.Expr) *Assign {
	return &Assign{Base: NewBase(id, "Assign", "extends rows with computed columns", inputs), Vars: vars, Exprs: exprs}
}

func (o *Assign) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	in, ok := SinglePredecessorResult(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	cols, rows := toRows(in, "value")
	outCols := append(append([]string{}, cols...), o.Vars...)
	ev := pattern.NewEvaluator()
	outRows := make([]value.Row, 0, len(rows))
	for _, row := range rows {
		binding := rowBinding{cols, row}
		newRow := row.Clone()
		for _, e := range o.Exprs {
			v, err := ev.Eval(e, binding)
			if err != nil {
				v = value.Null()
			}
			newRow = append(newRow, v)
		}
		outRows = append(outRows, newRow)
	}
	o.Stats().AddProduced(int64(len(outRows)))
	return value.DataSetResult(value.MustDataSet(outCols, outRows)), nil
}
