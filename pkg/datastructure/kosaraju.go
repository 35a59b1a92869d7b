package datastructure

// ComponentSummary. strongly connected components of the graph. vertices in different
// components can still reach each other in one direction, never in both.
type ComponentSummary struct {
	ComponentOf   []Index // component id of every vertex, ids follow a topological order of the condensation
	NumComponents int
	LargestSize   int
}

// RunKosaraju. kosaraju's algorithm over the directed road graph with iterative dfs, so deep
// graphs (long roads) do not grow the goroutine stack.
func (g *Graph) RunKosaraju() ComponentSummary {
	n := g.NumberOfVertices()

	// reverse adjacency in csr form
	inFirst := make([]Index, n+1)
	for i := range g.edges {
		inFirst[g.edges[i].head+1]++
	}
	for v := 0; v < n; v++ {
		inFirst[v+1] += inFirst[v]
	}
	next := make([]Index, n)
	copy(next, inFirst[:n])
	inTails := make([]Index, len(g.edges))
	for i := range g.edges {
		e := &g.edges[i]
		inTails[next[e.head]] = e.tail
		next[e.head]++
	}

	// first pass: vertices by increasing finish time
	order := make([]Index, 0, n)
	visited := make([]bool, n)
	type frame struct {
		v    Index
		next Index // position in the adjacency of v
	}
	stack := make([]frame, 0, 64)

	for s := 0; s < n; s++ {
		if visited[s] {
			continue
		}
		visited[s] = true
		stack = append(stack, frame{v: Index(s), next: g.firstOut[s]})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < g.firstOut[top.v+1] {
				head := g.edges[g.outEdgeIds[top.next]].head
				top.next++
				if !visited[head] {
					visited[head] = true
					stack = append(stack, frame{v: head, next: g.firstOut[head]})
				}
				continue
			}
			order = append(order, top.v)
			stack = stack[:len(stack)-1]
		}
	}

	// second pass on the reversed graph, by decreasing finish time
	componentOf := make([]Index, n)
	for i := range componentOf {
		componentOf[i] = INVALID_VERTEX_ID
	}
	summary := ComponentSummary{ComponentOf: componentOf}
	dfsStack := make([]Index, 0, 64)

	for i := n - 1; i >= 0; i-- {
		root := order[i]
		if componentOf[root] != INVALID_VERTEX_ID {
			continue
		}
		id := Index(summary.NumComponents)
		summary.NumComponents++
		size := 0

		componentOf[root] = id
		dfsStack = append(dfsStack[:0], root)
		for len(dfsStack) > 0 {
			v := dfsStack[len(dfsStack)-1]
			dfsStack = dfsStack[:len(dfsStack)-1]
			size++
			for _, u := range inTails[inFirst[v]:inFirst[v+1]] {
				if componentOf[u] == INVALID_VERTEX_ID {
					componentOf[u] = id
					dfsStack = append(dfsStack, u)
				}
			}
		}
		if size > summary.LargestSize {
			summary.LargestSize = size
		}
	}

	return summary
}
