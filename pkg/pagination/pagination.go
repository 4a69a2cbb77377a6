package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 12
	// MaxLimit caps how many items any listing page can request.
	MaxLimit = 100
)

// Params holds page-based pagination inputs from listing surfaces.
type Params struct {
	Page    int
	PerPage int
}

// Meta describes the page that was cut from a result set.
type Meta struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizePage clamps page numbers to start at 1.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Bounds returns the [start, end) slice indexes for the page over total items.
func Bounds(params Params, total int) (int, int, Meta) {
	perPage := NormalizeLimit(params.PerPage)
	page := NormalizePage(params.Page)

	totalPages := 0
	if total > 0 {
		totalPages = (total + perPage - 1) / perPage
	}

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return start, end, Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && totalPages > 0,
	}
}

// Slice cuts the requested page out of items. The returned slice is a copy.
func Slice[T any](items []T, params Params) ([]T, Meta) {
	start, end, meta := Bounds(params, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, meta
}
