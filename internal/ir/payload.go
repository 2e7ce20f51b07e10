package ir

import (
	"encoding/json"
	"fmt"
)

// Node type tags beyond the seven worker variant kinds.
const (
	NodeTask       = "task"
	NodeTaskImport = "taskimport"
)

// Node is one element of the editor payload. Data's shape is the entity
// matching Type: TaskDef for "task", ImportedTaskRef for "taskimport", and
// WorkerDef for each worker variant tag.
type Node struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// PayloadEdge mirrors Edge. Source and Target may hold node IDs or class
// names; Decode resolves them against the node list, IDs first.
type PayloadEdge struct {
	Source          string `json:"source"`
	Target          string `json:"target"`
	TargetInputType string `json:"targetInputType,omitempty"`
}

// GraphPayload is the interchange shape between the editor and the
// synthesizer. EntryEdges, ModuleName and PassthroughImports carry
// round-trip state the minimum payload may omit.
type GraphPayload struct {
	Nodes              []Node        `json:"nodes"`
	Edges              []PayloadEdge `json:"edges"`
	EntryEdges         []EntryEdge   `json:"entryEdges,omitempty"`
	ModuleName         string        `json:"moduleName,omitempty"`
	PassthroughImports []string      `json:"passthroughImports,omitempty"`
}

// Payload converts the graph to its editor payload shape. Node IDs are the
// class names themselves (import nodes prefixed) so payloads stay stable
// across runs.
func (g *Graph) Payload() (*GraphPayload, error) {
	p := &GraphPayload{
		Nodes:              []Node{},
		Edges:              []PayloadEdge{},
		ModuleName:         g.ModuleName,
		EntryEdges:         append([]EntryEdge(nil), g.EntryEdges...),
		PassthroughImports: append([]string(nil), g.PassthroughImports...),
	}
	for i := range g.Tasks {
		t := &g.Tasks[i]
		data, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("encoding task %s: %w", t.ClassName, err)
		}
		p.Nodes = append(p.Nodes, Node{ID: t.ClassName, Type: NodeTask, Data: data})
	}
	for i := range g.Workers {
		w := &g.Workers[i]
		data, err := json.Marshal(w)
		if err != nil {
			return nil, fmt.Errorf("encoding worker %s: %w", w.ClassName, err)
		}
		p.Nodes = append(p.Nodes, Node{ID: w.ClassName, Type: string(w.Variant), Data: data})
	}
	for i := range g.ImportedTasks {
		r := &g.ImportedTasks[i]
		data, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encoding import %s: %w", r.ClassName, err)
		}
		p.Nodes = append(p.Nodes, Node{ID: "import:" + r.ClassName, Type: NodeTaskImport, Data: data})
	}
	for _, e := range g.Edges {
		p.Edges = append(p.Edges, PayloadEdge(e))
	}
	return p, nil
}

// Decode converts an editor payload back into a Graph. An unknown node tag
// or undecodable node data is a FaultPayload carrying the node ID.
func (p *GraphPayload) Decode() (*Graph, error) {
	g := &Graph{
		ModuleName:         p.ModuleName,
		EntryEdges:         append([]EntryEdge(nil), p.EntryEdges...),
		PassthroughImports: append([]string(nil), p.PassthroughImports...),
	}
	idToClass := make(map[string]string, len(p.Nodes))
	for _, n := range p.Nodes {
		switch n.Type {
		case NodeTask:
			var t TaskDef
			if err := json.Unmarshal(n.Data, &t); err != nil {
				return nil, NewFault(FaultPayload, "task node data: %v", err).WithNode(n.ID)
			}
			if t.ClassName == "" {
				return nil, NewFault(FaultPayload, "task node has no className").WithNode(n.ID)
			}
			idToClass[n.ID] = t.ClassName
			g.Tasks = append(g.Tasks, t)
		case NodeTaskImport:
			var r ImportedTaskRef
			if err := json.Unmarshal(n.Data, &r); err != nil {
				return nil, NewFault(FaultPayload, "import node data: %v", err).WithNode(n.ID)
			}
			if r.ClassName == "" || r.ModulePath == "" {
				return nil, NewFault(FaultPayload, "import node needs className and modulePath").WithNode(n.ID)
			}
			idToClass[n.ID] = r.ClassName
			g.ImportedTasks = append(g.ImportedTasks, r)
		default:
			if !KnownVariant(VariantKind(n.Type)) {
				return nil, NewFault(FaultPayload, "unknown node type %q", n.Type).WithNode(n.ID)
			}
			var w WorkerDef
			if err := json.Unmarshal(n.Data, &w); err != nil {
				return nil, NewFault(FaultPayload, "worker node data: %v", err).WithNode(n.ID)
			}
			if w.ClassName == "" {
				return nil, NewFault(FaultPayload, "worker node has no className").WithNode(n.ID)
			}
			// The node tag wins over any variant embedded in data.
			w.Variant = VariantKind(n.Type)
			idToClass[n.ID] = w.ClassName
			g.Workers = append(g.Workers, w)
		}
	}
	resolve := func(ref string) string {
		if class, ok := idToClass[ref]; ok {
			return class
		}
		return ref
	}
	for _, e := range p.Edges {
		g.Edges = append(g.Edges, Edge{
			Source:          resolve(e.Source),
			Target:          resolve(e.Target),
			TargetInputType: e.TargetInputType,
		})
	}
	for i := range g.EntryEdges {
		g.EntryEdges[i].TargetWorker = resolve(g.EntryEdges[i].TargetWorker)
	}
	return g, nil
}
