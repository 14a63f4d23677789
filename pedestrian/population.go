package pedestrian

import (
	"github.com/lixenwraith/pedsim/grid"
)

// Population is the ordered live agent set
// Iteration order is evaluation order within a tick
type Population struct {
	members []*Pedestrian
	nextID  int
}

// NewPopulation creates an empty population
func NewPopulation() *Population {
	return &Population{
		members: make([]*Pedestrian, 0, 16),
	}
}

// Add appends an agent, assigning the next free ID when p.ID is negative
func (pop *Population) Add(p *Pedestrian) *Pedestrian {
	if p.ID < 0 {
		p.ID = pop.nextID
	}
	if p.ID >= pop.nextID {
		pop.nextID = p.ID + 1
	}
	pop.members = append(pop.members, p)
	return p
}

// NextID returns the identity the next auto-assigned agent will receive
func (pop *Population) NextID() int {
	return pop.nextID
}

// Len returns live agent count
func (pop *Population) Len() int {
	return len(pop.members)
}

// Members returns the live agents in evaluation order, callers must not retain across ticks
func (pop *Population) Members() []*Pedestrian {
	return pop.members
}

// Positions copies every live agent's current cell, aligned with Members
func (pop *Population) Positions(buf []grid.Index) []grid.Index {
	buf = buf[:0]
	for _, p := range pop.members {
		buf = append(buf, p.Cell)
	}
	return buf
}

// Replace swaps the member at position k, keeping order
func (pop *Population) Replace(k int, p *Pedestrian) {
	pop.members[k] = p
}

// RemoveIf drops every member matching fn, preserving the order of the rest
func (pop *Population) RemoveIf(fn func(p *Pedestrian) bool) int {
	kept := pop.members[:0]
	removed := 0
	for _, p := range pop.members {
		if fn(p) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	// Clear tail so dropped agents can be collected
	for i := len(kept); i < len(pop.members); i++ {
		pop.members[i] = nil
	}
	pop.members = kept
	return removed
}
