package nesting

import "slices"

// unionFind keeps the smallest id of a component as its root, so the result
// does not depend on the order of unions.
type unionFind struct {
	parent map[string]string
}

func newUnionFind(ids []string) *unionFind {
	uf := &unionFind{parent: make(map[string]string, len(ids))}
	for _, id := range ids {
		uf.parent[id] = id
	}
	return uf
}

func (uf *unionFind) find(id string) string {
	root := id
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for id != root {
		next := uf.parent[id]
		uf.parent[id] = root
		id = next
	}
	return root
}

func (uf *unionFind) union(a, b string) {
	ra, rb := uf.find(a), uf.find(b)
	switch {
	case ra == rb:
	case ra < rb:
		uf.parent[rb] = ra
	default:
		uf.parent[ra] = rb
	}
}

// components returns the sorted members of every component.
func (uf *unionFind) components() [][]string {
	byRoot := map[string][]string{}
	for id := range uf.parent {
		root := uf.find(id)
		byRoot[root] = append(byRoot[root], id)
	}
	res := make([][]string, 0, len(byRoot))
	for _, members := range byRoot {
		slices.Sort(members)
		res = append(res, members)
	}
	return res
}
