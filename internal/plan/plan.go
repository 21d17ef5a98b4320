// Package plan defines the PlanNode tree the core consumes from the
// upstream optimizer. The parser/planner are out of scope; this package
// only describes the shape the factory lowers.
package plan

// Kind enumerates the plan-node kinds.
type Kind string

const (
	KindScanVertices Kind = "ScanVertices"
	KindGetVertices  Kind = "GetVertices"
	KindScanEdges    Kind = "ScanEdges"
	KindGetEdges     Kind = "GetEdges"
	KindGetNeighbors Kind = "GetNeighbors"
	KindGetProp      Kind = "GetProp"
	KindIndexScan    Kind = "IndexScan"
	KindAllPaths     Kind = "AllPaths"

	KindFilter  Kind = "Filter"
	KindProject Kind = "Project"
	KindLimit   Kind = "Limit"
	KindSort    Kind = "Sort"
	KindTopN    Kind = "TopN"
	KindSample  Kind = "Sample"
	KindAggregate Kind = "Aggregate"
	KindDedup   Kind = "Dedup"
	KindUnwind  Kind = "Unwind"
	KindAssign  Kind = "Assign"

	KindUnion     Kind = "Union"
	KindUnionAll  Kind = "UnionAll"
	KindIntersect Kind = "Intersect"
	KindMinus     Kind = "Minus"

	KindInnerJoin Kind = "InnerJoin"
	KindLeftJoin  Kind = "LeftJoin"
	KindCrossJoin Kind = "CrossJoin"

	KindExpand           Kind = "Expand"
	KindExpandAll        Kind = "ExpandAll"
	KindTraverse         Kind = "Traverse"
	KindShortestPath     Kind = "ShortestPath"
	KindMultiShortestPath Kind = "MultiShortestPath"
	KindBFSShortest      Kind = "BFSShortest"
	KindAppendVertices   Kind = "AppendVertices"

	KindRollUpApply  Kind = "RollUpApply"
	KindPatternApply Kind = "PatternApply"

	KindLoop        Kind = "Loop"
	KindSelect      Kind = "Select"
	KindArgument    Kind = "Argument"
	KindPassThrough Kind = "PassThrough"
	KindDataCollect Kind = "DataCollect"
)

// SortItem is the deferred-parse form of a sort clause: "column" or
// "column ASC|DESC".
type SortItem struct {
	Expr string
	Desc bool
}

// AggFunc names one aggregate call of an Aggregate node.
type AggFunc struct {
	Func     string // COUNT, SUM, AVG, MIN, MAX, COLLECT, COLLECT_SET, BIT_AND, BIT_OR, BIT_XOR, STD, VARIANCE
	Expr     string
	Distinct bool
	Alias    string
}

// Projection is one (alias, expression) pair of a Project node.
type Projection struct {
	Alias string
	Expr  string
}

// Assignment is one (var, expr) pair of an Assign node.
type Assignment struct {
	Var  string
	Expr string
}

// DirectionToken is the raw, unparsed OUT/IN/other token the factory maps
// to Out/In/Both.
type DirectionToken string

// Node is one node of the plan tree the optimizer hands the core. It is a
// flat struct rather than N separate Go types per kind, mirroring a
// single-enum PlanNode shape the factory switches on — deferred fields
// (expression strings, vertex-id lists, sort-item strings) are kept as
// raw strings until the factory parses them.
type Node struct {
	ID       int
	Name     string
	Kind     Kind
	Children []*Node
	OutVar   string

	// Data-access params
	Space          string
	VertexIDsCSV   string // comma-separated, deferred-parse
	TagFilter      string
	FilterExpr     string
	Limit          *int64
	Skip           int64
	EdgeTypeFilter []string
	IndexName      string
	IndexProp      string
	IndexValueExpr string
	Forward        bool
	PropertyNames  []string

	// Result-processing params
	Projections []Projection
	SortItemsCSV []string // raw "column" / "column ASC|DESC" strings
	TopK        int
	SampleK     int
	GroupBy     []string
	AggFuncs    []AggFunc
	DedupByKey  []string // empty => full-row dedup
	UnwindExpr  string
	UnwindAlias string
	Assignments []Assignment

	// Joins
	LeftKeys  []string
	RightKeys []string
	ColNames  []string
	UseHash   bool

	// Graph traversal
	DirectionRaw DirectionToken
	StepLimit    *int
	MaxSteps     int
	StartVIDsCSV string
	EndVIDsCSV   string
	LeftVIDsCSV  string
	RightVIDsCSV string
	SingleShortest bool
	DedupVertices  bool
	TrackSegments  bool

	// Transformations
	CompareCols []string
	CollectCol  string
	KeyCols     []string
	Anti        bool

	// Control flow
	Condition     string
	Body          *Node
	MaxIterations *int
	ThenBranch    *Node
	ElseBranch    *Node
	ArgumentVar   string
}
