// Package pagination turns a paginator into Bulma pagination links.
//
// Links is a pure function from a paginator and its page window to a flat
// list of render instructions; Render writes those instructions as HTML.
package pagination

import (
	"net/url"
	"strconv"
)

// Paginator is the read-only view of a paginated result needed to draw
// navigation.
type Paginator interface {
	HasPages() bool
	OnFirstPage() bool
	HasMorePages() bool
	PreviousPageURL() string
	NextPageURL() string
	CurrentPage() int
}

// PageLink is one numbered page and its URL.
type PageLink struct {
	Number int
	URL    string
}

// Element is either a separator (Links empty) or a run of page links.
type Element struct {
	Separator string
	Links     []PageLink
}

func (e Element) IsSeparator() bool {
	return len(e.Links) == 0
}

// Separator is the element placed between non-adjacent runs of pages.
const Separator = "..."

// Page is a length-aware paginator over Total items.
type Page struct {
	Total   int
	PerPage int
	Current int

	// Path is the URL the page parameter is appended to; Query holds any
	// other parameters to preserve.
	Path     string
	Query    url.Values
	PageName string
}

var _ Paginator = (*Page)(nil)

// NewPage returns a Page with current clamped into [1, LastPage].
func NewPage(total, perPage, current int, path string) *Page {
	if perPage < 1 {
		perPage = 1
	}
	if total < 0 {
		total = 0
	}

	p := &Page{
		Total:    total,
		PerPage:  perPage,
		Path:     path,
		PageName: "page",
	}

	p.Current = min(max(current, 1), p.LastPage())
	return p
}

func (p *Page) LastPage() int {
	return max(1, (p.Total+p.PerPage-1)/p.PerPage)
}

// Offset is the index of the first item on the current page.
func (p *Page) Offset() int {
	return (p.Current - 1) * p.PerPage
}

func (p *Page) URL(n int) string {
	q := url.Values{}
	for k, v := range p.Query {
		q[k] = append([]string(nil), v...)
	}
	q.Set(p.PageName, strconv.Itoa(n))
	return p.Path + "?" + q.Encode()
}

func (p *Page) HasPages() bool     { return p.LastPage() > 1 }
func (p *Page) OnFirstPage() bool  { return p.Current <= 1 }
func (p *Page) HasMorePages() bool { return p.Current < p.LastPage() }
func (p *Page) CurrentPage() int   { return p.Current }

func (p *Page) PreviousPageURL() string {
	if p.OnFirstPage() {
		return ""
	}
	return p.URL(p.Current - 1)
}

func (p *Page) NextPageURL() string {
	if !p.HasMorePages() {
		return ""
	}
	return p.URL(p.Current + 1)
}

func (p *Page) links(from, to int) []PageLink {
	out := make([]PageLink, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, PageLink{Number: n, URL: p.URL(n)})
	}
	return out
}

// Window returns the page elements to display: every page when there are
// few, otherwise the first and last pages around a slider of onEachSide
// pages either side of the current one, with separators between runs.
func Window(p *Page, onEachSide int) []Element {
	last := p.LastPage()

	if last < onEachSide*2+8 {
		return []Element{{Links: p.links(1, last)}}
	}

	window := onEachSide + 4
	start := Element{Links: p.links(1, 2)}
	finish := Element{Links: p.links(last-1, last)}
	gap := Element{Separator: Separator}

	switch {
	case p.Current <= window:
		return []Element{
			{Links: p.links(1, window+onEachSide)},
			gap,
			finish,
		}
	case p.Current > last-window:
		return []Element{
			start,
			gap,
			{Links: p.links(last-(window+onEachSide-1), last)},
		}
	default:
		return []Element{
			start,
			gap,
			{Links: p.links(p.Current-onEachSide, p.Current+onEachSide)},
			gap,
			finish,
		}
	}
}
