package domain

// PriorityFilter restricts the board to a single priority. FilterAll disables it.
type PriorityFilter string

const FilterAll PriorityFilter = "All"

func (f PriorityFilter) Valid() bool {
	return f == FilterAll || Priority(f).Valid()
}

// SortBy selects the ordering of the derived board.
type SortBy string

const (
	SortNone SortBy = "none"
	SortDate SortBy = "date"
)

func (s SortBy) Valid() bool {
	return s == SortNone || s == SortDate
}

// ViewParams are the search, filter and sort settings of the board view.
type ViewParams struct {
	SearchQuery    string         `json:"searchQuery"`
	FilterPriority PriorityFilter `json:"filterPriority"`
	SortBy         SortBy         `json:"sortBy"`
}

// DefaultViewParams returns an unfiltered, unsorted view.
func DefaultViewParams() ViewParams {
	return ViewParams{FilterPriority: FilterAll, SortBy: SortNone}
}

// ViewPatch carries optional view parameter updates.
type ViewPatch struct {
	SearchQuery    *string         `json:"searchQuery,omitempty"`
	FilterPriority *PriorityFilter `json:"filterPriority,omitempty"`
	SortBy         *SortBy         `json:"sortBy,omitempty"`
}
