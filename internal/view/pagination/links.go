package pagination

import "strconv"

// Kind is the type of a render instruction.
type Kind string

const (
	KindPrevious Kind = "previous"
	KindNext     Kind = "next"
	KindEllipsis Kind = "ellipsis"
	KindPage     Kind = "page"
	KindCurrent  Kind = "current"
)

// Item is one render instruction. URL is empty for disabled, ellipsis and
// current items.
type Item struct {
	Kind     Kind
	Label    string
	URL      string
	Page     int
	Disabled bool
}

// Links converts a paginator and its elements into render instructions:
// previous, next, then the page list. It returns nil when there is only
// one page.
func Links(p Paginator, elements []Element) []Item {
	if !p.HasPages() {
		return nil
	}

	items := make([]Item, 0, 2+len(elements)*4)

	if p.OnFirstPage() {
		items = append(items, Item{Kind: KindPrevious, Label: "« Previous", Disabled: true})
	} else {
		items = append(items, Item{Kind: KindPrevious, Label: "« Previous", URL: p.PreviousPageURL()})
	}

	if p.HasMorePages() {
		items = append(items, Item{Kind: KindNext, Label: "Next page »", URL: p.NextPageURL()})
	} else {
		items = append(items, Item{Kind: KindNext, Label: "Next page »", Disabled: true})
	}

	current := p.CurrentPage()
	for _, el := range elements {
		if el.IsSeparator() {
			items = append(items, Item{Kind: KindEllipsis, Label: el.Separator})
			continue
		}
		for _, link := range el.Links {
			label := strconv.Itoa(link.Number)
			if link.Number == current {
				items = append(items, Item{Kind: KindCurrent, Label: label, Page: link.Number})
				continue
			}
			items = append(items, Item{Kind: KindPage, Label: label, URL: link.URL, Page: link.Number})
		}
	}

	return items
}
