package marker

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatch is returned when a fingerprint matches no catalog entry in
	// any orientation.
	ErrNoMatch = errors.New("no catalog match")

	// ErrDuplicateFingerprint is returned when two (entry, orientation)
	// pairs of a catalog share the same grid.
	ErrDuplicateFingerprint = errors.New("duplicate marker fingerprint")

	// ErrUnknownMarker is returned when an ID is not in the catalog.
	ErrUnknownMarker = errors.New("unknown marker")

	// ErrInvalidCatalog is returned for malformed catalog definitions.
	ErrInvalidCatalog = errors.New("invalid marker catalog")
)

// Shape is the 3D primitive drawn on top of a marker.
type Shape int

const (
	Triangle Shape = iota + 1
	Pentagon
	Cube
)

var shapeNames = map[Shape]string{
	Triangle: "triangle",
	Pentagon: "pentagon",
	Cube:     "cube",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// MarshalText encodes the shape by name.
func (s Shape) MarshalText() ([]byte, error) {
	if _, ok := shapeNames[s]; !ok {
		return nil, fmt.Errorf("unknown shape %d", int(s))
	}
	return []byte(s.String()), nil
}

// ParseShape returns the shape with the given name.
func ParseShape(name string) (Shape, error) {
	for s, n := range shapeNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q", name)
}

// Entry is one marker of the catalog: its identity, the identity of its
// sibling, the primitive it carries and its authored pattern.
type Entry struct {
	ID        string `json:"id"`
	SiblingID string `json:"sibling_id"`
	Shape     Shape  `json:"shape"`
	Pattern   Grid   `json:"pattern"`
}

// Match is a successful catalog lookup. Orientation k means the sampled
// grid equals the authored pattern rotated k times by 90° counter-clockwise.
type Match struct {
	Entry       Entry
	Orientation int
}

type indexEntry struct {
	entry       int
	orientation int
}

// Catalog is an immutable set of markers with all four orientations of
// every pattern expanded up front. It is safe for concurrent use.
type Catalog struct {
	entries   []Entry
	rotations [][4]Grid
	byID      map[string]int
	index     map[string]indexEntry
	size      int
}

// NewCatalog validates the entries and builds the fingerprint index.
//
// # Errors
//
//   - ErrInvalidCatalog for an empty list, a blank or repeated ID, a
//     sibling that is not in the list, an unknown shape, or patterns that
//     are not square, not 0/255 or not all the same size.
//   - ErrDuplicateFingerprint when any two (entry, orientation) grids are
//     equal, including a pattern that maps onto itself under rotation.
func NewCatalog(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries: %w", ErrInvalidCatalog)
	}

	c := &Catalog{
		entries:   make([]Entry, len(entries)),
		rotations: make([][4]Grid, len(entries)),
		byID:      make(map[string]int, len(entries)),
		index:     make(map[string]indexEntry, 4*len(entries)),
		size:      entries[0].Pattern.Size(),
	}
	copy(c.entries, entries)

	for i, e := range c.entries {
		if e.ID == "" {
			return nil, fmt.Errorf("entry %d has no id: %w", i, ErrInvalidCatalog)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("marker %s listed twice: %w", e.ID, ErrInvalidCatalog)
		}
		if _, ok := shapeNames[e.Shape]; !ok {
			return nil, fmt.Errorf("marker %s: unknown shape %d: %w", e.ID, int(e.Shape), ErrInvalidCatalog)
		}
		if !e.Pattern.square() || e.Pattern.Size() != c.size {
			return nil, fmt.Errorf("marker %s: pattern must be a %dx%d grid of 0/255: %w", e.ID, c.size, c.size, ErrInvalidCatalog)
		}
		c.byID[e.ID] = i
	}

	for i, e := range c.entries {
		if _, ok := c.byID[e.SiblingID]; !ok {
			return nil, fmt.Errorf("marker %s: sibling %q not in catalog: %w", e.ID, e.SiblingID, ErrInvalidCatalog)
		}

		g := e.Pattern
		for k := 0; k < 4; k++ {
			key := g.key()
			if prev, dup := c.index[key]; dup {
				return nil, fmt.Errorf("marker %s orientation %d equals marker %s orientation %d: %w",
					e.ID, k, c.entries[prev.entry].ID, prev.orientation, ErrDuplicateFingerprint)
			}
			c.index[key] = indexEntry{entry: i, orientation: k}
			c.rotations[i][k] = g
			g = g.Rotate()
		}
	}
	return c, nil
}

// Match looks up a sampled grid in the fingerprint index. Because
// construction rejects duplicate fingerprints, the result is the same one
// a declaration-order scan would find.
func (c *Catalog) Match(g Grid) (Match, error) {
	hit, ok := c.index[g.key()]
	if !ok {
		return Match{}, ErrNoMatch
	}
	return Match{Entry: c.entries[hit.entry], Orientation: hit.orientation}, nil
}

// MatchLinear compares g against each entry's four orientations in
// declaration order and returns the first exact match.
func (c *Catalog) MatchLinear(g Grid) (Match, error) {
	for i, rots := range c.rotations {
		for k, r := range rots {
			if r.Equal(g) {
				return Match{Entry: c.entries[i], Orientation: k}, nil
			}
		}
	}
	return Match{}, ErrNoMatch
}

// Lookup returns the entry with the given ID.
func (c *Catalog) Lookup(id string) (Entry, error) {
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, fmt.Errorf("marker %q: %w", id, ErrUnknownMarker)
	}
	return c.entries[i], nil
}

// Rotations returns the four orientation grids of one entry.
func (c *Catalog) Rotations(id string) ([4]Grid, error) {
	i, ok := c.byID[id]
	if !ok {
		return [4]Grid{}, fmt.Errorf("marker %q: %w", id, ErrUnknownMarker)
	}
	return c.rotations[i], nil
}

// Entries returns the entries in declaration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// GridSize returns the number of cells per side of every pattern.
func (c *Catalog) GridSize() int {
	return c.size
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}
