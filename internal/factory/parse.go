package factory

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/wbrown/graphql-engine/internal/operator"
	"github.com/wbrown/graphql-engine/internal/pattern"
	"github.com/wbrown/graphql-engine/internal/plan"
	"github.com/wbrown/graphql-engine/internal/storage"
)

// parseSortItems parses the sort-item deferred-parse policy: "column" or
// "column ASC|DESC"; unknown direction defaults to ASC.
func parseSortItems(items []string, log zerolog.Logger) []operator.SortKey {
	out := make([]operator.SortKey, 0, len(items))
	for _, raw := range items {
		fields := strings.Fields(raw)
		col := raw
		desc := false
		if len(fields) == 2 {
			col = fields[0]
			switch strings.ToUpper(fields[1]) {
			case "DESC":
				desc = true
			case "ASC":
				desc = false
			default:
				log.Warn().Str("item", raw).Msg("unknown sort direction, defaulting to ASC")
			}
		}
		out = append(out, operator.SortKey{Expr: parseExprFailSoft(col, log), Desc: desc})
	}
	return out
}

// parseDirection maps the raw edge-direction token:
// OUT→Out, IN→In, anything else→Both.
func parseDirection(tok plan.DirectionToken) storage.Direction {
	switch strings.ToUpper(string(tok)) {
	case "OUT":
		return storage.Out
	case "IN":
		return storage.In
	default:
		return storage.Both
	}
}

// parseExprFailSoft implements the fail-soft expression policy: a parse
// failure is logged and replaced with a defaulted variable expression rather
// than failing the whole plan. An empty string parses to a Null literal, the
// "no expression" case (e.g. an unset filter).
func parseExprFailSoft(src string, log zerolog.Logger) *pattern.Expr {
	if src == "" {
		return pattern.NullLit()
	}
	expr, err := pattern.Parse(src)
	if err != nil {
		log.Warn().Err(err).Str("expr", src).Msg("expression failed to parse, defaulting to a variable reference")
		return pattern.VarExpr(src)
	}
	return expr
}

// parseExprFailSoftOptional is parseExprFailSoft but returns nil for an
// empty source, for fields where "no expression" must stay absent (a nil
// ScanVertices/ScanEdges/Traverse filter, as opposed to a literal Null).
func parseExprFailSoftOptional(src string, log zerolog.Logger) *pattern.Expr {
	if src == "" {
		return nil
	}
	return parseExprFailSoft(src, log)
}

// parseAggFuncs converts the deferred plan.AggFunc list into operator.AggSpec,
// parsing each expression string via the fail-soft policy. A COUNT(*) is
// represented by an empty Expr field in the plan and carried through as a
// nil pattern.Expr.
func parseAggFuncs(funcs []plan.AggFunc, log zerolog.Logger) []operator.AggSpec {
	out := make([]operator.AggSpec, 0, len(funcs))
	for _, f := range funcs {
		var expr *pattern.Expr
		if f.Expr != "" {
			expr = parseExprFailSoft(f.Expr, log)
		}
		out = append(out, operator.AggSpec{Func: f.Func, Expr: expr, Distinct: f.Distinct, Alias: f.Alias})
	}
	return out
}

// parseProjections parses a plan's Projection expression strings, preserving
// alias/expr pairing.
func parseProjections(projections []plan.Projection, log zerolog.Logger) (aliases []plan.Projection, exprs []*pattern.Expr) {
	exprs = make([]*pattern.Expr, 0, len(projections))
	for _, p := range projections {
		exprs = append(exprs, parseExprFailSoft(p.Expr, log))
	}
	return projections, exprs
}

// parseAssignments parses a plan's Assignment expression strings.
func parseAssignments(assignments []plan.Assignment, log zerolog.Logger) (vars []string, exprs []*pattern.Expr) {
	vars = make([]string, 0, len(assignments))
	exprs = make([]*pattern.Expr, 0, len(assignments))
	for _, a := range assignments {
		vars = append(vars, a.Var)
		exprs = append(exprs, parseExprFailSoft(a.Expr, log))
	}
	return vars, exprs
}
