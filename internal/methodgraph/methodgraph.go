// Package methodgraph renders an attribution pass as a block→method
// contribution graph for visual inspection.
package methodgraph

import (
	"sort"

	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"

	"github.com/HumphreyHCB/BuboExperiments/internal/attribute"
)

// Build constructs the graph: one node per method, one edge from every
// contributing block into each method it fed time into. Edges are sorted
// by block id so repeated runs render identically.
func Build(res *attribute.Result) *lattice.Graph {
	g := &lattice.Graph{}
	for _, mt := range res.Methods() {
		g.Nodes = append(g.Nodes, mt.Method)

		ids := make([]string, 0, len(mt.Blocks))
		for id := range mt.Blocks {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			g.Edges = append(g.Edges, lattice.Edge{
				Caller: "block_" + id,
				Callee: mt.Method,
			})
		}
	}
	g.Dedup()
	return g
}

// DOT renders the contribution graph in Graphviz DOT form.
func DOT(res *attribute.Result, name string) string {
	return render.DOT(Build(res), name)
}
