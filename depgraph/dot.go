// Copyright 2024 The sdflang Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package depgraph

import (
	"github.com/emicklei/dot"

	"github.com/sdflang/core/term"
)

const (
	bgColor        = "#1e1e1e"
	fgColor        = "#d4d4d4"
	highlightColor = "#f9c74f"
)

// RenderDOT renders g as a DOT graph, filling every vertex present in
// cone in the highlight color. Self-edges are never present in g (see
// Graph.addEdge) so there is nothing further to omit here.
func RenderDOT(g *Graph, cone map[int64]*term.StateVariable) string {
	gr := dot.NewGraph(dot.Directed)
	gr.Attr("bgcolor", bgColor)
	gr.Attr("fontcolor", fgColor)

	nodes := make(map[int64]dot.Node)
	for id, sv := range g.byID {
		n := gr.Node(sv.FullName())
		n.Attr("color", fgColor)
		n.Attr("fontcolor", fgColor)
		if _, ok := cone[id]; ok {
			n.Attr("style", "filled")
			n.Attr("fillcolor", highlightColor)
			n.Attr("fontcolor", "#1e1e1e")
		}
		nodes[id] = n
	}

	for from, tos := range g.edges {
		for to := range tos {
			gr.Edge(nodes[from], nodes[to]).Attr("color", fgColor)
		}
	}

	return gr.String()
}
