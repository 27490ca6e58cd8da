package plan

// Graph is the build planner's output: nodes, edges, and per-kind side
// tables.
type Graph struct {
	Nodes []Node
	Edges []Edge

	CheckInfo     map[string]*BuildTargetInfo
	BuildCoreInfo map[string]*BuildTargetInfo
	TestInfo      map[string]*TestInfo
	LinkInfo      map[string]*LinkInfo
	ExecInfo      map[string]*ExecInfo
	CStubInfo     map[string]*CStubInfo
	PrebuildInfo  map[string]*PrebuildInfo
	VirtualInfo   map[string]*VirtualInfo
	BundleInfo    map[string]*BundleInfo

	nodeSeen map[string]Node
	// callSites records, for each node key, the nodes whose expansion
	// called need_node on it (debug aid).
	callSites map[string][]string
}

func newGraph() *Graph {
	return &Graph{
		CheckInfo:     make(map[string]*BuildTargetInfo),
		BuildCoreInfo: make(map[string]*BuildTargetInfo),
		TestInfo:      make(map[string]*TestInfo),
		LinkInfo:      make(map[string]*LinkInfo),
		ExecInfo:      make(map[string]*ExecInfo),
		CStubInfo:     make(map[string]*CStubInfo),
		PrebuildInfo:  make(map[string]*PrebuildInfo),
		VirtualInfo:   make(map[string]*VirtualInfo),
		BundleInfo:    make(map[string]*BundleInfo),
		nodeSeen:      make(map[string]Node),
		callSites:     make(map[string][]string),
	}
}

func (g *Graph) hasNode(key string) bool {
	_, ok := g.nodeSeen[key]
	return ok
}

func (g *Graph) addEdge(from, to Node, kind EdgeKind) {
	for i := range g.Edges {
		if g.Edges[i].From == from && g.Edges[i].To == to {
			g.Edges[i].Kind = g.Edges[i].Kind.Merge(kind)
			return
		}
	}
	g.Edges = append(g.Edges, Edge{From: from, To: to, Kind: kind})
}

// edgesFrom returns every edge currently originating at n.
func (g *Graph) edgesFrom(n Node) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == n {
			out = append(out, e)
		}
	}
	return out
}

// edgesTo returns every edge currently terminating at n.
func (g *Graph) edgesTo(n Node) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.To == n {
			out = append(out, e)
		}
	}
	return out
}

// removeNode deletes n and every edge touching it (used by coalescing).
func (g *Graph) removeNode(n Node) {
	key := n.Key()
	delete(g.nodeSeen, key)
	filtered := g.Nodes[:0]
	for _, existing := range g.Nodes {
		if existing != n {
			filtered = append(filtered, existing)
		}
	}
	g.Nodes = filtered

	edges := g.Edges[:0]
	for _, e := range g.Edges {
		if e.From != n && e.To != n {
			edges = append(edges, e)
		}
	}
	g.Edges = edges
}
