package model

import "strings"

// Chain identifies the network a pool belongs to.
type Chain string

const (
	ChainJuno    Chain = "juno"
	ChainOsmosis Chain = "osmosis"
)

// KnownChains is the order chains are offered in the dashboard filter.
var KnownChains = []Chain{ChainJuno, ChainOsmosis}

// ParseChain normalizes a tag. Unknown tags are kept as-is and reported false.
func ParseChain(s string) (Chain, bool) {
	c := Chain(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range KnownChains {
		if c == known {
			return c, true
		}
	}
	return c, false
}

func (c Chain) String() string {
	return string(c)
}
