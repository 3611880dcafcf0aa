package jobs

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/jobboard/backend/models"
)

// MaxPageSize caps the limit a client may request
const MaxPageSize = 100

// BuildAPIParams renders the listing request the front end sends. page and
// limit are always present. Filters are only sent when includeFilters is set,
// and the free-text query only once a search has been applied. Empty values
// are omitted.
func BuildAPIParams(page int, includeFilters bool, f models.JobFilters, hasSearched bool) url.Values {
	if page < 1 {
		page = 1
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(models.DefaultPageSize))

	if !includeFilters {
		return v
	}

	if q := strings.TrimSpace(f.Query); hasSearched && q != "" {
		v.Set("search", q)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		v.Set("location", loc)
	}
	setList(v, "category", f.Category)
	setList(v, "type", f.Type)
	setList(v, "experience", f.Experience)
	if f.IsRemote != nil && *f.IsRemote {
		v.Set("remote", "true")
	}
	if f.IsFeatured != nil && *f.IsFeatured {
		v.Set("featured", "true")
	}
	return v
}

// ParseAPIParams is the inverse of BuildAPIParams, plus sortBy/sortOrder
func ParseAPIParams(v url.Values) SearchParams {
	p := SearchParams{
		Page:      atoiDefault(v.Get("page"), 1),
		Limit:     atoiDefault(v.Get("limit"), models.DefaultPageSize),
		SortBy:    models.SortByDate,
		SortOrder: models.SortDesc,
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}

	p.Filters.Query = strings.TrimSpace(v.Get("search"))
	p.Filters.Location = strings.TrimSpace(v.Get("location"))
	p.Filters.Category = splitCSV[models.Category](v.Get("category"))
	p.Filters.Type = splitCSV[models.JobType](v.Get("type"))
	p.Filters.Experience = splitCSV[models.Experience](v.Get("experience"))
	if v.Get("remote") == "true" {
		p.Filters.IsRemote = models.Bool(true)
	}
	if v.Get("featured") == "true" {
		p.Filters.IsFeatured = models.Bool(true)
	}

	switch models.SortBy(v.Get("sortBy")) {
	case models.SortBySalary:
		p.SortBy = models.SortBySalary
	case models.SortByRelevance:
		p.SortBy = models.SortByRelevance
	}
	if models.SortOrder(v.Get("sortOrder")) == models.SortAsc {
		p.SortOrder = models.SortAsc
	}
	return p.Normalized()
}

func setList[T ~string](v url.Values, key string, list []T) {
	parts := make([]string, 0, len(list))
	for _, item := range list {
		if s := strings.TrimSpace(string(item)); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) > 0 {
		v.Set(key, strings.Join(parts, ","))
	}
}

func splitCSV[T ~string](raw string) []T {
	var out []T
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, T(part))
		}
	}
	return out
}

func atoiDefault(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
