package modular

import "sort"

// schedule computes the block evaluation order for a voice's module graph.
//
// It runs Kahn's algorithm over the dependency edges. When the sort stalls
// (every remaining module still has an unsatisfied dependency) the graph
// contains a cycle; the stall is broken by marking one edge as one-block
// delayed, so its target reads the source's previous-block output. The edge
// chosen is the one with the highest authoring index among edges that close
// a cycle in the unresolved subgraph, which makes cycle breaking a pure
// function of the connection list: reloading the same patch always delays
// the same edges and yields the same order. A stalled subgraph always
// contains such an edge, so the loop terminates for any finite graph.
//
// Returned delayed indices are sorted ascending. The result depends only on
// the immutable connection set and is cached for the lifetime of the patch.
func schedule(moduleCount int, edges []compiledEdge) (order []int, delayed []int) {
	indegree := make([]int, moduleCount)
	live := make([]bool, moduleCount)

	for i := range live {
		live[i] = true
	}

	cut := make([]bool, len(edges))
	for _, e := range edges {
		indegree[e.dst]++
	}

	queue := make([]int, 0, moduleCount)

	for i := 0; i < moduleCount; i++ {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order = make([]int, 0, moduleCount)

	for len(order) < moduleCount {
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]

			order = append(order, id)
			live[id] = false

			for ei, e := range edges {
				if cut[ei] || e.src != id {
					continue
				}

				cut[ei] = true

				indegree[e.dst]--
				if indegree[e.dst] == 0 {
					queue = append(queue, e.dst)
				}
			}
		}

		if len(order) == moduleCount {
			break
		}

		// Stalled: the live subgraph contains at least one cycle. Delay the
		// last-authored edge that closes one (its target reaches its source
		// through live edges).
		pick := -1

		for ei, e := range edges {
			if cut[ei] {
				continue
			}

			if live[e.src] && live[e.dst] && reaches(e.dst, e.src, edges, cut) {
				pick = ei
			}
		}

		cut[pick] = true
		delayed = append(delayed, pick)

		indegree[edges[pick].dst]--
		if indegree[edges[pick].dst] == 0 {
			queue = append(queue, edges[pick].dst)
		}
	}

	sort.Ints(delayed)

	return order, delayed
}

// reaches reports whether `to` is reachable from `from` over un-cut edges.
func reaches(from, to int, edges []compiledEdge, cut []bool) bool {
	if from == to {
		return true
	}

	seen := map[int]bool{from: true}
	stack := []int{from}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for ei, e := range edges {
			if cut[ei] || e.src != n || seen[e.dst] {
				continue
			}

			if e.dst == to {
				return true
			}

			seen[e.dst] = true
			stack = append(stack, e.dst)
		}
	}

	return false
}
