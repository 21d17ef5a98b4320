package operator

import "github.com/wbrown/graphql-engine/internal/value"

// RollUpApply groups the left input by compare-key columns, collecting
// matching right-input values into a list per group.
type RollUpApply struct {
	Base
	CompareCols []string
	CollectCol  string
}

func NewRollUpApply(id int, inputs []Executor, compareCols []string, collectCol string) *RollUpApply {
	return &RollUpApply{Base: NewBase(id, "RollUpApply", "groups left by key, collects matching right values", inputs), CompareCols: compareCols, CollectCol: collectCol}
}

func (o *RollUpApply) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	lc, lr, rc, rr, ok := twoInputRows(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	leftIdx := colIndices(lc, o.CompareCols)
	rightIdx := colIndices(rc, o.CompareCols)
	collectIdx := -1
	for i, c := range rc {
		if c == o.CollectCol {
			collectIdx = i
			break
		}
	}

	grouped := make(map[string][]value.Value)
	for _, rrow := range rr {
		k := keyOf(rrow, rightIdx)
		var v value.Value
		if collectIdx >= 0 {
			v = rrow[collectIdx]
		} else {
			v = value.Null()
		}
		grouped[k] = append(grouped[k], v)
	}

	outCols := append(append([]string{}, lc...), o.CollectCol)
	outRows := make([]value.Row, 0, len(lr))
	for _, lrow := range lr {
		k := keyOf(lrow, leftIdx)
		collected := grouped[k]
		outRows = append(outRows, append(lrow.Clone(), value.List(collected)))
	}
	o.Stats().AddProduced(int64(len(outRows)))
	return value.DataSetResult(value.MustDataSet(outCols, outRows)), nil
}

// PatternApply is a semijoin (anti-semijoin when Anti is true) — keeps
// left rows whose key matches at least one right row.
type PatternApply struct {
	Base
	KeyCols []string
	Anti    bool
}

func NewPatternApply(id int, inputs []Executor, keyCols []string, anti bool) *PatternApply {
	return &PatternApply{Base: NewBase(id, "PatternApply", "semijoin / anti-semijoin on key columns", inputs), KeyCols: keyCols, Anti: anti}
}

func (o *PatternApply) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	lc, lr, rc, rr, ok := twoInputRows(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	leftIdx := colIndices(lc, o.KeyCols)
	rightIdx := colIndices(rc, o.KeyCols)
	rightKeys := make(map[string]bool, len(rr))
	for _, rrow := range rr {
		rightKeys[keyOf(rrow, rightIdx)] = true
	}

	out := make([]value.Row, 0, len(lr))
	for _, lrow := range lr {
		matched := rightKeys[keyOf(lrow, leftIdx)]
		if matched != o.Anti {
			out = append(out, lrow)
		}
	}
	o.Stats().AddProduced(int64(len(out)))
	return value.DataSetResult(value.MustDataSet(lc, out)), nil
}
