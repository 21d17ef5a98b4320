package operator

import (
	"fmt"

	"github.com/wbrown/graphql-engine/internal/pattern"
	"github.com/wbrown/graphql-engine/internal/value"
)

// PassThrough is an identity operator: re-emits its single predecessor's
// result unchanged.
type PassThrough struct{ Base }

func NewPassThrough(id int, inputs []Executor) *PassThrough {
	return &PassThrough{NewBase(id, "PassThrough", "re-emits predecessor result unchanged", inputs)}
}

func (o *PassThrough) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	res, ok := SinglePredecessorResult(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	o.Stats().AddProduced(1)
	return res, nil
}

// DataCollect accumulates every input's rows into one DataSet, used as a
// Loop body's terminal sink.
type DataCollect struct{ Base }

func NewDataCollect(id int, inputs []Executor) *DataCollect {
	return &DataCollect{NewBase(id, "DataCollect", "accumulates all input rows into one result", inputs)}
}

func (o *DataCollect) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	var cols []string
	var rows []value.Row
	for _, in := range o.Inputs() {
		res, ok := ctx.Results.Result(in.ID())
		if !ok {
			continue
		}
		ds := res.ToDataSet("value")
		if cols == nil {
			cols = ds.Columns
		}
		rows = append(rows, ds.Rows...)
	}
	if cols == nil {
		cols = []string{"value"}
	}
	o.Stats().AddProduced(int64(len(rows)))
	return value.DataSetResult(value.MustDataSet(cols, rows)), nil
}

// Argument re-emits a previously computed named result from the shared
// execution context, used for correlated subqueries where a Loop/Select
// body reads an outer binding.
type Argument struct {
	Base
	VarName string
}

func NewArgument(id int, varName string) *Argument {
	return &Argument{Base: NewBase(id, "Argument", "re-emits a named outer-scope result", nil), VarName: varName}
}

func (o *Argument) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	v, ok := ctx.GetVar(o.VarName)
	if !ok {
		return value.Empty(), fmt.Errorf("Argument: no bound variable %q in execution context", o.VarName)
	}
	o.Stats().AddProduced(1)
	return value.Values([]value.Value{v}), nil
}

// Select evaluates condition once against the incoming bindings and executes
// exactly one branch, skipping the other entirely — so a branch with
// side effects (e.g. a nested Loop) never runs unless chosen.
type Select struct {
	Base
	Condition  *pattern.Expr
	ThenBranch Executor
	ElseBranch Executor
}

func NewSelect(id int, inputs []Executor, condition *pattern.Expr, thenBranch, elseBranch Executor) *Select {
	return &Select{Base: NewBase(id, "Select", "evaluates condition once, runs exactly one branch", inputs), Condition: condition, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

func (o *Select) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	ev := pattern.NewEvaluator()
	binding := pattern.MapBinding{}
	if res, ok := SinglePredecessorResult(ctx, o.Inputs()); ok {
		ds := res.ToDataSet("value")
		if len(ds.Rows) > 0 {
			for i, c := range ds.Columns {
				binding[c] = ds.Rows[0][i]
			}
		}
	}

	cond, err := ev.Eval(o.Condition, binding)
	if err != nil {
		return value.Empty(), fmt.Errorf("Select: %w", err)
	}
	truthy, _ := cond.AsBool()

	var branch Executor
	if truthy {
		branch = o.ThenBranch
	} else {
		branch = o.ElseBranch
	}
	if branch == nil {
		o.Stats().AddProduced(0)
		return value.Empty(), nil
	}
	if !branch.IsOpen() {
		if err := branch.Open(); err != nil {
			return value.Empty(), err
		}
	}
	res, err := branch.Execute(ctx)
	if err != nil {
		return value.Empty(), err
	}
	o.Stats().AddProduced(1)
	return res, nil
}

// BodyFactory builds one fresh execution of a Loop's body. Each Executor may
// run Execute at most once, so a Loop cannot simply re-run a single body
// instance; it asks for a new tree every iteration instead, mirroring how
// the factory would re-lower the body's plan subtree per pass.
type BodyFactory func() (Executor, error)

// Loop repeatedly executes body, evaluating condition against the shared
// execution context before each iteration, stopping at max_iterations if
// set. Loops cannot be produced by the factory — they
// must be manually assembled by the caller — and pump results into ctx
// rather than returning a plain result.
type Loop struct {
	Base
	Condition     *pattern.Expr
	Body          BodyFactory
	MaxIterations int // 0 = unbounded; only Condition or a kill stops the loop
	BodyOutVar    string
}

func NewLoop(id int, body BodyFactory, condition *pattern.Expr, maxIterations int, bodyOutVar string) *Loop {
	return &Loop{Base: NewBase(id, "Loop", "repeats body while condition holds", nil), Condition: condition, Body: body, MaxIterations: maxIterations, BodyOutVar: bodyOutVar}
}

func (o *Loop) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	ev := pattern.NewEvaluator()
	iterations := 0
	var last value.ExecutionResult = value.Empty()

	for {
		if ctx.IsKilled() {
			return last, fmt.Errorf("Loop: query killed after %d iterations", iterations)
		}
		if o.MaxIterations > 0 && iterations >= o.MaxIterations {
			break
		}
		if o.Condition != nil {
			binding := pattern.MapBinding(ctx.SnapshotVars())
			cond, err := ev.Eval(o.Condition, binding)
			if err != nil {
				return last, fmt.Errorf("Loop: %w", err)
			}
			truthy, _ := cond.AsBool()
			if !truthy {
				break
			}
		}

		body, err := o.Body()
		if err != nil {
			return last, fmt.Errorf("Loop: iteration %d: building body: %w", iterations, err)
		}
		if err := body.Open(); err != nil {
			return last, err
		}
		res, err := body.Execute(ctx)
		if err != nil {
			return last, fmt.Errorf("Loop: iteration %d: %w", iterations, err)
		}
		_ = body.Close()
		last = res
		if o.BodyOutVar != "" {
			ds := res.ToDataSet("value")
			if len(ds.Rows) > 0 && len(ds.Columns) > 0 {
				ctx.SetVar(o.BodyOutVar, ds.Rows[len(ds.Rows)-1][0])
			}
		}
		iterations++
	}
	o.Stats().AddProduced(int64(iterations))
	return last, nil
}
