package core

// IDGenerator hands out monotonically increasing identifiers. Each registry that
// creates objects owns its own generator.
type IDGenerator struct {
	next uint32
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Next returns the next free identifier.
func (g *IDGenerator) Next() uint32 {
	id := g.next
	g.next++
	return id
}

// Issued is the number of identifiers handed out so far.
func (g *IDGenerator) Issued() uint32 {
	return g.next
}
