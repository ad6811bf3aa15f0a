package structure

// Cycle is a closed path of topic titles. The last element repeats the
// first so the closing edge is visible in reports.
type Cycle []string

// DetectCycles runs a depth-first search from every unvisited topic
// over the prerequisite map restricted to known titles. When a
// neighbor already on the recursion stack is revisited, the path slice
// from that neighbor onward plus the closing edge is recorded as one
// cycle.
func DetectCycles(prereqs map[string][]string, topics []string) []Cycle {
	known := make(map[string]bool, len(topics))
	for _, t := range topics {
		known[t] = true
	}

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string
	var cycles []Cycle

	var visit func(node string)
	visit = func(node string) {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		for _, dep := range prereqs[node] {
			if !known[dep] {
				continue
			}
			if onStack[dep] {
				start := 0
				for i, p := range path {
					if p == dep {
						start = i
						break
					}
				}
				cycle := make(Cycle, 0, len(path)-start+1)
				cycle = append(cycle, path[start:]...)
				cycle = append(cycle, dep)
				cycles = append(cycles, cycle)
				continue
			}
			if !visited[dep] {
				visit(dep)
			}
		}

		path = path[:len(path)-1]
		onStack[node] = false
	}

	for _, t := range topics {
		if !visited[t] {
			visit(t)
		}
	}
	return cycles
}

// UnknownRefs lists prerequisite titles that do not match any known
// topic. These are warnings, never errors.
func UnknownRefs(prereqs map[string][]string, topics []string) []string {
	known := make(map[string]bool, len(topics))
	for _, t := range topics {
		known[t] = true
	}

	var unknown []string
	seen := make(map[string]bool)
	for _, topic := range topics {
		for _, dep := range prereqs[topic] {
			if !known[dep] && !seen[dep] {
				seen[dep] = true
				unknown = append(unknown, dep)
			}
		}
	}
	return unknown
}

// Orphans lists topics with no prerequisites that are not themselves a
// prerequisite of anything. The first topic is expected to look like
// this, so it is excluded.
func Orphans(prereqs map[string][]string, topics []string) []string {
	isPrereq := make(map[string]bool)
	for _, deps := range prereqs {
		for _, dep := range deps {
			isPrereq[dep] = true
		}
	}

	var orphans []string
	for i, t := range topics {
		if i == 0 {
			continue
		}
		if len(prereqs[t]) == 0 && !isPrereq[t] {
			orphans = append(orphans, t)
		}
	}
	return orphans
}

// ReachableFrom walks the prerequisite map as an undirected graph from
// start and reports which topics are connected to it.
func ReachableFrom(start string, prereqs map[string][]string, topics []string) map[string]bool {
	known := make(map[string]bool, len(topics))
	for _, t := range topics {
		known[t] = true
	}

	adjacency := make(map[string][]string)
	for topic, deps := range prereqs {
		if !known[topic] {
			continue
		}
		for _, dep := range deps {
			if !known[dep] {
				continue
			}
			adjacency[topic] = append(adjacency[topic], dep)
			adjacency[dep] = append(adjacency[dep], topic)
		}
	}

	reached := make(map[string]bool)
	if !known[start] {
		return reached
	}
	queue := []string{start}
	reached[start] = true
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[node] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}
	return reached
}
