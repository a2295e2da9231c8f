package sumo

import "fmt"

// Page is one window of a job's results. Start and End are 1-indexed
// and inclusive.
type Page struct {
	Number int
	Start  int64
	End    int64
	Offset int64
	Limit  int64
}

// Params returns the offset/limit request parameters of the page.
func (p Page) Params() Params {
	return Params{"offset": p.Offset, "limit": p.Limit}
}

// Empty reports whether the window holds no rows.
func (p Page) Empty() bool {
	return p.End < p.Start
}

// Label renders the page as a menu entry, e.g. "Page 2, Messages [251 - 500]".
func (p Page) Label(kind string) string {
	return fmt.Sprintf("Page %d, %s [%d - %d]", p.Number, kind, p.Start, p.End)
}

// Pages splits total results into PageSize windows.
//
// Full pages come first. A final partial page covers the remainder and
// requests limit=End rather than the remainder length. When total is zero a
// single empty window [1, 0] is returned; callers must not fetch it. An
// exact multiple of PageSize has no trailing empty window.
func Pages(total int64) []Page {
	if total < 0 {
		total = 0
	}

	leftOver := total % PageSize
	divisible := total - leftOver
	if divisible < 0 {
		divisible = 0
	}
	fullPages := divisible / PageSize

	pages := make([]Page, 0, fullPages+1)
	for n := int64(1); n <= fullPages; n++ {
		end := n * PageSize
		start := end - (PageSize - 1)
		pages = append(pages, Page{
			Number: int(n),
			Start:  start,
			End:    end,
			Offset: start - 1,
			Limit:  PageSize,
		})
	}

	if leftOver > 0 || total == 0 {
		finalStart := fullPages*PageSize + 1
		finalEnd := fullPages*PageSize + leftOver
		pages = append(pages, Page{
			Number: int(fullPages) + 1,
			Start:  finalStart,
			End:    finalEnd,
			Offset: finalStart - 1,
			Limit:  finalEnd,
		})
	}
	return pages
}

// PageAt returns the 1-indexed page n of total results.
func PageAt(total int64, n int) (Page, error) {
	pages := Pages(total)
	if n < 1 || n > len(pages) {
		return Page{}, fmt.Errorf("page %d out of range (1-%d)", n, len(pages))
	}
	return pages[n-1], nil
}
