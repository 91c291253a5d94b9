package view

import (
	"net/url"
	"strings"
)

// PageQuery is the dashboard state carried in the URL.
type PageQuery struct {
	Chains []string
	Denom  string
}

// URL links to path with the current selection; an empty open leaves every
// overlay closed.
func (q PageQuery) URL(path string, open string) string {
	v := url.Values{}
	for _, c := range q.Chains {
		v.Add("chains", c)
	}
	if q.Denom != "" {
		v.Set("denom", q.Denom)
	}
	if open != "" {
		v.Set("open", open)
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// ParseOpen reads the row ID of the open overlay, "" when none is open.
func ParseOpen(s string) string {
	return strings.TrimSpace(s)
}
