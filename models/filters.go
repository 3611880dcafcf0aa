package models

// JobFilters narrows a listing query. A nil or empty field is no constraint.
type JobFilters struct {
	Query      string       `json:"query,omitempty"`
	Location   string       `json:"location,omitempty"`
	Category   []Category   `json:"category,omitempty"`
	Type       []JobType    `json:"type,omitempty"`
	Experience []Experience `json:"experience,omitempty"`
	IsRemote   *bool        `json:"isRemote,omitempty"`
	IsFeatured *bool        `json:"isFeatured,omitempty"`
}

// SortBy selects the ordering column of a search
type SortBy string

// SortBy constants
const (
	SortByDate      SortBy = "date"
	SortBySalary    SortBy = "salary"
	SortByRelevance SortBy = "relevance"
)

// SortOrder is asc or desc
type SortOrder string

// SortOrder constants
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DefaultPageSize is the page size the public listing uses
const DefaultPageSize = 12

// PageResult is one page of a job search
// @Description Paginated job search result
type PageResult struct {
	Jobs        []Job `json:"jobs"`
	Total       int   `json:"total" example:"37"`
	TotalPages  int   `json:"totalPages" example:"4"`
	CurrentPage int   `json:"currentPage" example:"1"`
	HasMore     bool  `json:"hasMore" example:"true"`
}

// EmptyPage is what a failed search degrades to
func EmptyPage(page int) PageResult {
	return PageResult{Jobs: []Job{}, CurrentPage: page}
}

// Bool returns a pointer to b
func Bool(b bool) *bool {
	return &b
}
