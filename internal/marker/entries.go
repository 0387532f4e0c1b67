package marker

// DefaultGridSize is the number of cells per side of the built-in markers,
// including the black border ring.
const DefaultGridSize = 6

// DefaultEntries returns the built-in marker set: three sibling pairs, one
// per shape. '1' cells are white.
func DefaultEntries() []Entry {
	return []Entry{
		{
			ID: "1", SiblingID: "2", Shape: Triangle,
			Pattern: MustParseGrid(
				"000000",
				"011100",
				"010110",
				"001000",
				"010000",
				"000000",
			),
		},
		{
			ID: "2", SiblingID: "1", Shape: Triangle,
			Pattern: MustParseGrid(
				"000000",
				"011010",
				"011100",
				"000010",
				"000010",
				"000000",
			),
		},
		{
			ID: "3", SiblingID: "4", Shape: Cube,
			Pattern: MustParseGrid(
				"000000",
				"010100",
				"000010",
				"011010",
				"000110",
				"000000",
			),
		},
		{
			ID: "4", SiblingID: "3", Shape: Cube,
			Pattern: MustParseGrid(
				"000000",
				"011010",
				"010000",
				"010110",
				"001110",
				"000000",
			),
		},
		{
			ID: "5", SiblingID: "6", Shape: Pentagon,
			Pattern: MustParseGrid(
				"000000",
				"001100",
				"001010",
				"001000",
				"001110",
				"000000",
			),
		},
		{
			ID: "6", SiblingID: "5", Shape: Pentagon,
			Pattern: MustParseGrid(
				"000000",
				"011000",
				"000010",
				"000110",
				"011000",
				"000000",
			),
		},
	}
}

// DefaultCatalog builds the catalog of DefaultEntries.
func DefaultCatalog() (*Catalog, error) {
	return NewCatalog(DefaultEntries())
}
