package catalog

// PageSize is the fixed number of results per page served by the upstream.
const PageSize = 20

// Info is the pagination metadata of a list response.
type Info struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

// Consistent reports whether Pages agrees with Count under PageSize.
func (i Info) Consistent() bool {
	return i.Pages == ExpectedPages(i.Count)
}

// Page is one page of a list response.
type Page[T any] struct {
	Info    Info `json:"info"`
	Results []T  `json:"results"`
}

// EmptyPage returns the zero result set used for "no matches".
func EmptyPage[T any]() *Page[T] {
	return &Page[T]{Results: []T{}}
}

// ExpectedPages returns the page count for count results.
func ExpectedPages(count int) int {
	if count <= 0 {
		return 0
	}
	return (count + PageSize - 1) / PageSize
}

// NormalizePage clamps a requested page number to the first page.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
