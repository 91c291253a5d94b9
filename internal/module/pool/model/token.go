package model

// Token is the metadata the backend resolved for one side of a pair.
type Token struct {
	Name        *string `json:"name"`
	Symbol      *string `json:"symbol"`
	TotalSupply *string `json:"total_supply"`
	Address     *string `json:"address"`
	Decimals    *int    `json:"decimals"`
}

// Denom holds the native and the cw20 representation of a token; usually only
// one of them is set.
type Denom struct {
	Native *string `json:"native"`
	CW20   *string `json:"cw20"`
}

// Value returns the cw20 address when present, the native denom otherwise.
func (d *Denom) Value() string {
	if d == nil {
		return ""
	}
	if d.CW20 != nil && *d.CW20 != "" {
		return *d.CW20
	}
	if d.Native != nil {
		return *d.Native
	}
	return ""
}

func (t *Token) SymbolOr(fallback string) string {
	if t == nil || t.Symbol == nil || *t.Symbol == "" {
		return fallback
	}
	return *t.Symbol
}

func (t *Token) AddressOr(fallback string) string {
	if t == nil || t.Address == nil || *t.Address == "" {
		return fallback
	}
	return *t.Address
}
