package operator

import "github.com/wbrown/graphql-engine/internal/value"

func colIndices(cols []string, keys []string) []int {
	idx := make([]int, len(keys))
	for i, k := range keys {
		idx[i] = -1
		for ci, c := range cols {
			if c == k {
				idx[i] = ci
				break
			}
		}
	}
	return idx
}

func keyOf(row value.Row, idx []int) string {
	key := make(value.Row, len(idx))
	for i, ci := range idx {
		if ci >= 0 {
			key[i] = row[ci]
		} else {
			key[i] = value.Null()
		}
	}
	return rowKeyString(key)
}

// InnerJoin is an equi-join on keys_left/keys_right; the hash variant
// builds a hash map on the smaller side.
type InnerJoin struct {
	Base
	LeftKeys, RightKeys []string
	ColNames            []string
}

func NewInnerJoin(id int, inputs []Executor, leftKeys, rightKeys, colNames []string) *InnerJoin {
	return &InnerJoin{Base: NewBase(id, "InnerJoin", "hash equi-join", inputs), LeftKeys: leftKeys, RightKeys: rightKeys, ColNames: colNames}
}

func (o *InnerJoin) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	lc, lr, rc, rr, ok := twoInputRows(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	buildRows, buildKeys, buildCols, probeRows, probeKeys, buildOnLeft := lr, o.LeftKeys, lc, rr, o.RightKeys, true
	if len(rr) < len(lr) {
		buildRows, buildKeys, buildCols, probeRows, probeKeys, buildOnLeft = rr, o.RightKeys, rc, lr, o.LeftKeys, false
	}

	buildIdx := colIndices(buildCols, buildKeys)
	var probeCols []string
	if buildOnLeft {
		probeCols = rc
	} else {
		probeCols = lc
	}
	probeIdx := colIndices(probeCols, probeKeys)

	hash := make(map[string][]value.Row, len(buildRows))
	for _, row := range buildRows {
		k := keyOf(row, buildIdx)
		hash[k] = append(hash[k], row)
	}

	var out []value.Row
	for _, prow := range probeRows {
		k := keyOf(prow, probeIdx)
		for _, brow := range hash[k] {
			var combined value.Row
			if buildOnLeft {
				combined = append(append(value.Row{}, brow...), prow...)
			} else {
				combined = append(append(value.Row{}, prow...), brow...)
			}
			out = append(out, combined)
		}
	}
	outCols := o.ColNames
	if len(outCols) == 0 {
		outCols = append(append([]string{}, lc...), rc...)
	}
	o.Stats().AddProduced(int64(len(out)))
	return value.DataSetResult(value.MustDataSet(outCols, out)), nil
}

// LeftJoin preserves left rows; right columns become Null where no match.
type LeftJoin struct {
	Base
	LeftKeys, RightKeys []string
	ColNames            []string
}

func NewLeftJoin(id int, inputs []Executor, leftKeys, rightKeys, colNames []string) *LeftJoin {
	return &LeftJoin{Base: NewBase(id, "LeftJoin", "left-preserving equi-join", inputs), LeftKeys: leftKeys, RightKeys: rightKeys, ColNames: colNames}
}

func (o *LeftJoin) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	lc, lr, rc, rr, ok := twoInputRows(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	rightIdx := colIndices(rc, o.RightKeys)
	hash := make(map[string][]value.Row, len(rr))
	for _, row := range rr {
		k := keyOf(row, rightIdx)
		hash[k] = append(hash[k], row)
	}
	leftIdx := colIndices(lc, o.LeftKeys)

	var out []value.Row
	nullRight := make(value.Row, len(rc))
	for i := range nullRight {
		nullRight[i] = value.Null()
	}
	for _, lrow := range lr {
		k := keyOf(lrow, leftIdx)
		matches := hash[k]
		if len(matches) == 0 {
			out = append(out, append(append(value.Row{}, lrow...), nullRight...))
			continue
		}
		for _, rrow := range matches {
			out = append(out, append(append(value.Row{}, lrow...), rrow...))
		}
	}
	outCols := o.ColNames
	if len(outCols) == 0 {
		outCols = append(append([]string{}, lc...), rc...)
	}
	o.Stats().AddProduced(int64(len(out)))
	return value.DataSetResult(value.MustDataSet(outCols, out)), nil
}

// CrossJoin is the Cartesian product of two row sets.
type CrossJoin struct {
	Base
	ColNames []string
}

func NewCrossJoin(id int, inputs []Executor, colNames []string) *CrossJoin {
	return &CrossJoin{Base: NewBase(id, "CrossJoin", "Cartesian product", inputs), ColNames: colNames}
}

func (o *CrossJoin) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	lc, lr, rc, rr, ok := twoInputRows(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	out := make([]value.Row, 0, len(lr)*len(rr))
	for _, l := range lr {
		for _, r := range rr {
			out = append(out, append(append(value.Row{}, l...), r...))
		}
	}
	outCols := o.ColNames
	if len(outCols) == 0 {
		outCols = append(append([]string{}, lc...), rc...)
	}
	o.Stats().AddProduced(int64(len(out)))
	return value.DataSetResult(value.MustDataSet(outCols, out)), nil
}
