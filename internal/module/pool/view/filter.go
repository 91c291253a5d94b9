package view

import (
	"strings"

	"github.com/daubit/tracy-web/internal/module/pool/model"
)

type FilterMode string

const (
	FilterInclude FilterMode = "include"
	FilterExclude FilterMode = "exclude"
)

func ParseFilterMode(s string) FilterMode {
	if FilterMode(strings.ToLower(strings.TrimSpace(s))) == FilterExclude {
		return FilterExclude
	}
	return FilterInclude
}

// ChainFilter selects pools by chain tag. In include mode an empty selection
// passes everything; in exclude mode the selected chains are hidden.
type ChainFilter struct {
	Mode   FilterMode
	Chains []model.Chain
}

func NewChainFilter(mode FilterMode, chains []string) ChainFilter {
	f := ChainFilter{Mode: mode}
	seen := make(map[model.Chain]bool)
	for _, raw := range chains {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			c, _ := model.ParseChain(part)
			if !seen[c] {
				seen[c] = true
				f.Chains = append(f.Chains, c)
			}
		}
	}
	return f
}

func (f ChainFilter) Selected(c model.Chain) bool {
	for _, s := range f.Chains {
		if s == c {
			return true
		}
	}
	return false
}

func (f ChainFilter) Allows(c model.Chain) bool {
	if f.Mode == FilterExclude {
		return !f.Selected(c)
	}
	return len(f.Chains) == 0 || f.Selected(c)
}

// Apply keeps backend order.
func (f ChainFilter) Apply(pools model.PoolList) model.PoolList {
	out := make(model.PoolList, 0, len(pools))
	for _, p := range pools {
		if f.Allows(p.Chain()) {
			out = append(out, p)
		}
	}
	return out
}

func (f ChainFilter) Values() []string {
	out := make([]string, len(f.Chains))
	for i, c := range f.Chains {
		out[i] = c.String()
	}
	return out
}
