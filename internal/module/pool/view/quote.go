package view

import (
	"strings"

	"github.com/daubit/tracy-web/internal/module/pool/model"
	"github.com/daubit/tracy-web/internal/module/query"
)

// QuoteForm is the swap page input. Amount is an integer in base units.
type QuoteForm struct {
	TokenIn  string
	TokenOut string
	Amount   string
}

func NewQuoteForm(tokenIn, tokenOut, amount string) QuoteForm {
	return QuoteForm{
		TokenIn:  strings.TrimSpace(tokenIn),
		TokenOut: strings.TrimSpace(tokenOut),
		Amount:   strings.TrimSpace(amount),
	}
}

func (f QuoteForm) Empty() bool {
	return f.TokenIn == "" && f.TokenOut == "" && f.Amount == ""
}

// Validate returns a message for the user, or "" when the form can be sent.
func (f QuoteForm) Validate() string {
	switch {
	case f.TokenIn == "" || f.TokenOut == "":
		return "Both tokens are required."
	case f.TokenIn == f.TokenOut:
		return "Token in and token out must differ."
	case !isAmount(f.Amount):
		return "Amount must be a positive whole number of base units, at most 2^128-1."
	}
	return ""
}

// maxAmount is the largest u128.
const maxAmount = "340282366920938463463374607431768211455"

func isAmount(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	digits := strings.TrimLeft(s, "0")
	if digits == "" {
		return false
	}
	if len(digits) != len(maxAmount) {
		return len(digits) < len(maxAmount)
	}
	return digits <= maxAmount
}

type QuoteRow struct {
	PoolAddress string
	TokenIn     string
	TokenOut    string
	Error       string
}

type QuoteTable struct {
	Status TableStatus
	Rows   []QuoteRow
	Error  string
}

func (t QuoteTable) Loading() bool {
	return t.Status == TableLoading
}

func BuildQuotes(state query.State[model.QuoteList]) QuoteTable {
	t := QuoteTable{}
	if state.IsLoading {
		t.Status = TableLoading
		return t
	}
	if state.Err != nil {
		t.Error = state.Err.Error()
	}
	if !state.HasData {
		t.Status = TableError
		if t.Error == "" {
			t.Status = TableLoading
		}
		return t
	}

	t.Status = TableReady
	for _, q := range state.Data {
		row := QuoteRow{
			PoolAddress: deref(q.PoolAddress),
			Error:       deref(q.Error),
		}
		if q.TokenIn != nil {
			row.TokenIn = q.TokenIn.String()
		}
		if q.TokenOut != nil {
			row.TokenOut = q.TokenOut.String()
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
