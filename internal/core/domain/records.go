package domain

// ExtractedText is the line sequence of a paginated document.
type ExtractedText struct {
	Path  string
	Pages int
	Lines []string
}

// TechnicalItem is one inspected air-conditioning unit from the technical-visit document.
type TechnicalItem struct {
	Line        int
	AssetTag    Field
	Brand       Brand
	CapacityBTU Field
	Location    Field
}

// CostItem is one priced line from the cost worksheet.
type CostItem struct {
	Line        int
	Description Field
	Amount      Field
	// Section is the join key against TechnicalItem.Location.
	Section string
}

type ReconciledEntry struct {
	Seq         int
	Item        TechnicalItem
	Description Field
	Amount      Field
	Matched     bool
}
