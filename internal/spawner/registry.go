package spawner

import "github.com/tormentor-esp/extension/pkg/core"

// Registry maps spawner IDs to their records. Entries are added and removed
// one-for-one with the host's spawner lifecycle events. Not safe for
// concurrent use; the tracker serializes access.
type Registry struct {
	order   []uint32
	records map[uint32]*Record
}

func NewRegistry() *Registry {
	return &Registry{records: make(map[uint32]*Record)}
}

// Create adds a record for a new spawner. An already known spawner keeps its
// record and Create reports false.
func (g *Registry) Create(id uint32, position core.Position3D, mode core.GameMode) (*Record, bool) {
	if r, ok := g.records[id]; ok {
		return r, false
	}
	r := New(id, position, mode)
	g.records[id] = r
	g.order = append(g.order, id)
	return r, true
}

// Get returns the record for id.
func (g *Registry) Get(id uint32) (*Record, bool) {
	r, ok := g.records[id]
	return r, ok
}

// Remove deletes the record for id and returns it.
func (g *Registry) Remove(id uint32) (*Record, bool) {
	r, ok := g.records[id]
	if !ok {
		return nil, false
	}
	delete(g.records, id)
	for i, v := range g.order {
		if v == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return r, true
}

// All returns the records in creation order.
func (g *Registry) All() []*Record {
	out := make([]*Record, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.records[id])
	}
	return out
}

func (g *Registry) Len() int {
	return len(g.records)
}

// Reset removes every record.
func (g *Registry) Reset() {
	g.order = nil
	g.records = make(map[uint32]*Record)
}
