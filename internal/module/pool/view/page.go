package view

import "github.com/daubit/tracy-web/internal/module/pool/model"

const (
	PoweredByURL    = "https://daubit.org"
	refreshInterval = 2
)

type NavItem struct {
	Title  string
	Href   string
	Active bool
}

var navItems = []NavItem{
	{Title: "Home", Href: "/"},
	{Title: "Pools", Href: "/pools"},
	{Title: "Swap", Href: "/swap"},
}

// Layout is shared by every page: breadcrumb header and attribution footer.
type Layout struct {
	Title     string
	Nav       []NavItem
	PoweredBy string
	// Refresh makes the browser reload after that many seconds; zero disables it.
	Refresh int
}

func NewLayout(title, active string) Layout {
	nav := make([]NavItem, len(navItems))
	copy(nav, navItems)
	for i := range nav {
		nav[i].Active = nav[i].Href == active
	}
	return Layout{
		Title:     title,
		Nav:       nav,
		PoweredBy: PoweredByURL,
	}
}

type ChainOption struct {
	Chain    model.Chain
	Selected bool
}

type PoolsPage struct {
	Layout
	Path    string
	Query   PageQuery
	Filter  ChainFilter
	Options []ChainOption
	Table   Table
}

func NewPoolsPage(path string, q PageQuery, filter ChainFilter, table Table) PoolsPage {
	page := PoolsPage{
		Layout: NewLayout("Pools", "/pools"),
		Path:   path,
		Query:  q,
		Filter: filter,
		Table:  table,
	}
	if path == "/" {
		page.Layout = NewLayout("Pools", "/")
	}
	if table.Loading() {
		page.Refresh = refreshInterval
	}

	seen := make(map[model.Chain]bool)
	add := func(c model.Chain) {
		if !seen[c] {
			seen[c] = true
			page.Options = append(page.Options, ChainOption{Chain: c, Selected: filter.Selected(c)})
		}
	}
	for _, c := range model.KnownChains {
		add(c)
	}
	for _, c := range filter.Chains {
		add(c)
	}
	for _, r := range table.Rows {
		add(r.Chain)
	}
	return page
}

func (p PoolsPage) RowURL(id string) string {
	return p.Query.URL(p.Path, id)
}

func (p PoolsPage) CloseURL() string {
	return p.Query.URL(p.Path, "")
}

func (p PoolsPage) Excluding() bool {
	return p.Filter.Mode == FilterExclude
}

type SwapPage struct {
	Layout
	Form      QuoteForm
	FormError string
	Submitted bool
	Quotes    QuoteTable
}

func NewSwapPage(form QuoteForm, formError string, quotes QuoteTable) SwapPage {
	page := SwapPage{
		Layout:    NewLayout("Swap", "/swap"),
		Form:      form,
		FormError: formError,
		Submitted: !form.Empty() && formError == "",
		Quotes:    quotes,
	}
	if page.Submitted && quotes.Loading() {
		page.Refresh = refreshInterval
	}
	return page
}
