// Package nesting clusters densely related events of a DCR graph into groups.
package nesting

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pbinitiative/zendcr/pkg/dcr"
)

const groupIdPrefix = "nesting_"

type Result struct {
	Graph      *dcr.Graph `json:"graph"`
	NestingIds []string   `json:"nestingIds"`
}

type pair struct {
	a, b string
}

func newPair(x, y string) pair {
	if y < x {
		x, y = y, x
	}
	return pair{a: x, b: y}
}

// Nest groups every pair of events connected by at least threshold relations,
// counted in both directions over all kinds. A threshold below one behaves like
// one, grouping whole connected components. Only events sharing the same
// innermost group are paired, so every nesting group sits inside exactly one
// enclosing scope.
//
// Nesting groups scope enabledness: a member only considers condition and
// milestone sources inside its group. The group id is added to the included
// set as a pseudo-event, excluding it disables every member. The input graph
// is not modified.
func Nest(graph *dcr.Graph, threshold int) Result {
	res := Result{Graph: graph.Clone(), NestingIds: []string{}}
	threshold = max(threshold, 1)

	counts := map[pair]int{}
	for _, r := range graph.Relations {
		if r.Source == r.Target || !graph.HasEvent(r.Source) || !graph.HasEvent(r.Target) {
			continue
		}
		if graph.GroupOf(r.Source) != graph.GroupOf(r.Target) {
			continue
		}
		counts[newPair(r.Source, r.Target)]++
	}

	uf := newUnionFind(graph.EventIds())
	pairs := make([]pair, 0, len(counts))
	for p := range counts {
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, func(x, y pair) int {
		if x.a != y.a {
			return strings.Compare(x.a, y.a)
		}
		return strings.Compare(x.b, y.b)
	})
	for _, p := range pairs {
		if counts[p] >= threshold {
			uf.union(p.a, p.b)
		}
	}

	var groups [][]string
	for _, members := range uf.components() {
		if len(members) >= 2 {
			groups = append(groups, members)
		}
	}
	slices.SortFunc(groups, func(x, y []string) int { return strings.Compare(x[0], y[0]) })

	taken := map[string]bool{}
	for _, id := range graph.EventIds() {
		taken[id] = true
	}
	for _, gr := range graph.Groups {
		taken[gr.Id] = true
	}
	nested := res.Graph
	for i, members := range groups {
		id := fmt.Sprintf("%s%d", groupIdPrefix, i+1)
		for suffix := 1; taken[id]; suffix++ {
			id = fmt.Sprintf("%s%d_%d", groupIdPrefix, i+1, suffix)
		}
		taken[id] = true
		parent := graph.GroupOf(members[0])
		nested.Groups = append(nested.Groups, dcr.Group{
			Id:      id,
			Label:   fmt.Sprintf("Group %d", i+1),
			Kind:    dcr.GroupKindNesting,
			Parent:  parent,
			Members: members,
		})
		for _, member := range members {
			nested.SubProcessMap[member] = id
		}
		nested.Marking.Included.Add(id)
		res.NestingIds = append(res.NestingIds, id)
	}
	// a sub-process whose boundary event joined a nesting group now lives inside it
	for i, gr := range nested.Groups {
		if gr.Kind != dcr.GroupKindSubProcess {
			continue
		}
		if owner := nested.GroupOf(gr.Id); owner != gr.Parent {
			nested.Groups[i].Parent = owner
		}
	}
	return res
}
