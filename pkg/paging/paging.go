package paging

import "strconv"

// Ellipsis marks a collapsed gap in a page-index window.
const Ellipsis = "..."

// Page describes a clamped offset/limit window over a result set.
type Page struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	Offset     int `json:"offset"`
	Limit      int `json:"limit"`
}

// Paginate converts a total count and page size into a clamped window.
// The requested page is clamped to [1, totalPages], or 1 when the set is
// empty. A non-positive page size defaults to 25.
func Paginate(totalCount, pageSize, requestedPage int) Page {
	if pageSize <= 0 {
		pageSize = 25
	}
	if totalCount < 0 {
		totalCount = 0
	}

	totalPages := (totalCount + pageSize - 1) / pageSize

	page := requestedPage
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	if totalPages == 0 {
		page = 1
	}

	return Page{
		Page:       page,
		TotalPages: totalPages,
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
	}
}

// Window produces the abbreviated page-index display: the first and last
// page always appear, along with pages within two of the current page;
// gaps collapse into a single ellipsis marker.
func Window(page, totalPages int) []string {
	if totalPages <= 0 {
		return nil
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	window := make([]string, 0, totalPages)
	prevShown := 0
	for i := 1; i <= totalPages; i++ {
		show := i == 1 || i == totalPages || (i >= page-2 && i <= page+2)
		if !show {
			continue
		}
		if prevShown > 0 && i-prevShown > 1 {
			window = append(window, Ellipsis)
		}
		window = append(window, strconv.Itoa(i))
		prevShown = i
	}
	return window
}
