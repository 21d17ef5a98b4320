package commands

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wbrown/graphql-engine/internal/plan"
)

// loadPlan reads a plan.Node tree from a YAML file, the same yaml.v3
// convention internal/config uses for the engine's own settings file. There
// is no query-string parser/planner in this engine; the CLI instead reads a
// plan tree directly off disk.
func loadPlan(path string) (*plan.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file %s: %w", path, err)
	}
	var root plan.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing plan file %s: %w", path, err)
	}
	return &root, nil
}

// outputVarsFor walks the plan tree collecting a node -> OutVar map, the
// shape Engine.ExecutePlan's outputVars parameter expects, for every node
// that names one.
func outputVarsFor(root *plan.Node) map[int]string {
	out := make(map[int]string)
	var walk func(n *plan.Node)
	walk = func(n *plan.Node) {
		if n == nil {
			return
		}
		if n.OutVar != "" {
			out[n.ID] = n.OutVar
		}
		for _, c := range n.Children {
			walk(c)
		}
		walk(n.ThenBranch)
		walk(n.ElseBranch)
	}
	walk(root)
	return out
}
