package model

const (
	ListingUsers      = "user"
	ListingInstallers = "installer"
	ListingHistory    = "history"

	HistoryFilterAll  = "all"
	HistoryFilterBulk = "bulk"

	// PageSize is the fixed number of rows per listing page
	PageSize = 6
)

// ListingQuery holds the query parameters of GET /api/get-data
type ListingQuery struct {
	Type       string
	Search     string
	Page       int
	RoleFilter string
}

// HistoryFilters narrows email_history queries
type HistoryFilters struct {
	Search     string
	RoleFilter string // "all", "bulk" or a role name
}

// ListingMeta describes the pagination state of a listing page
type ListingMeta struct {
	TotalCount  int64 `json:"totalCount"`
	TotalPages  int64 `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
}

// ListingPage is a page of user or history rows
type ListingPage struct {
	Items any         `json:"items"`
	Meta  ListingMeta `json:"meta"`
}
