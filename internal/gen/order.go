package gen

import (
	"slices"

	"funcmap-generator/internal/plan"
	"funcmap-generator/internal/typedef"
)

// orderByCallees places each mapping after the mappings it calls.
//
// Mappings that call each other, directly or through others, form one group
// and keep their relative input order. Among groups whose callees are all
// placed, the one holding the earliest input mapping goes first, so input
// without calls between mappings comes back unchanged.
func orderByCallees(mappings []*plan.Mapping) []*plan.Mapping {
	if len(mappings) < 2 {
		return mappings
	}

	callees := calleeIndices(mappings)
	groups := connectedGroups(len(mappings), callees)

	group := make([]int, len(mappings))
	for g, members := range groups {
		for _, i := range members {
			group[i] = g
		}
	}

	// pending counts the distinct callee groups each group still waits on.
	pending := make([]int, len(groups))
	callers := make([][]int, len(groups))

	for g, members := range groups {
		var deps []int

		for _, i := range members {
			for _, j := range callees[i] {
				if d := group[j]; d != g && !slices.Contains(deps, d) {
					deps = append(deps, d)
				}
			}
		}

		pending[g] = len(deps)
		for _, d := range deps {
			callers[d] = append(callers[d], g)
		}
	}

	var ready []int

	for g := range groups {
		if pending[g] == 0 {
			ready = append(ready, g)
		}
	}

	first := func(g int) int { return groups[g][0] }

	out := make([]*plan.Mapping, 0, len(mappings))

	for len(ready) > 0 {
		k := 0
		for i := 1; i < len(ready); i++ {
			if first(ready[i]) < first(ready[k]) {
				k = i
			}
		}

		g := ready[k]
		ready = slices.Delete(ready, k, k+1)

		for _, i := range groups[g] {
			out = append(out, mappings[i])
		}

		for _, c := range callers[g] {
			pending[c]--
			if pending[c] == 0 {
				ready = append(ready, c)
			}
		}
	}

	return out
}

// calleeIndices resolves the calls of every mapping to the indices of the
// mappings of the same mode that implement them. Self calls are dropped.
func calleeIndices(mappings []*plan.Mapping) [][]int {
	type key struct {
		id   typedef.TypeID
		mode plan.Mode
	}

	index := make(map[key][]int)
	for i, m := range mappings {
		k := key{id: m.Def.ID(), mode: m.Mode}
		index[k] = append(index[k], i)
	}

	out := make([][]int, len(mappings))

	for i, m := range mappings {
		for _, id := range m.Callees() {
			for _, j := range index[key{id: id, mode: m.Mode}] {
				if j != i {
					out[i] = append(out[i], j)
				}
			}
		}
	}

	return out
}

// connectedGroups returns the strongly connected components of the call
// graph, each sorted by input index.
func connectedGroups(n int, edges [][]int) [][]int {
	var (
		counter int
		stack   []int
		groups  [][]int
	)

	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)

	for i := range index {
		index[i] = -1
	}

	var visit func(v int)
	visit = func(v int) {
		index[v] = counter
		low[v] = counter
		counter++

		stack = append(stack, v)
		onStack[v] = true

		for _, w := range edges[v] {
			switch {
			case index[w] < 0:
				visit(w)
				low[v] = min(low[v], low[w])
			case onStack[w]:
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] != index[v] {
			return
		}

		var members []int

		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false

			members = append(members, w)
			if w == v {
				break
			}
		}

		slices.Sort(members)
		groups = append(groups, members)
	}

	for v := range n {
		if index[v] < 0 {
			visit(v)
		}
	}

	return groups
}
