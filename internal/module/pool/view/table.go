package view

import (
	"fmt"
	"strconv"

	"github.com/daubit/tracy-web/internal/module/pool/model"
	"github.com/daubit/tracy-web/internal/module/query"
)

type TableStatus string

const (
	TableLoading TableStatus = "loading"
	TableError   TableStatus = "error"
	TableReady   TableStatus = "ready"
)

var poolColumns = []Column{
	{Title: "Chain"},
	{Title: "Token 1"},
	{Title: "Token 2"},
	{Title: "Address"},
	{Title: "Reserve 1", Numeric: true},
	{Title: "Reserve 2", Numeric: true},
}

type Column struct {
	Title   string
	Numeric bool
}

type Field struct {
	Label string
	Value string
}

type Cell struct {
	Text    string
	Numeric bool
}

type Row struct {
	Index int
	// ID names the row in the open parameter: the pool address, or "#<index>"
	// for a pool served without one.
	ID         string
	Chain      model.Chain
	Address    string
	Cells      []Cell
	Details    []Field
	Disclosure Disclosure
}

// Table is the render model of the pools list.
type Table struct {
	Status  TableStatus
	Columns []Column
	Rows    []Row
	// Error is set when the last fetch failed. Rows may still hold the
	// previous result.
	Error string
	// Total is the row count before filtering.
	Total int
}

func (t Table) Loading() bool {
	return t.Status == TableLoading
}

// Overlay returns the row whose overlay is open, nil when all are closed.
func (t Table) Overlay() *Row {
	for i := range t.Rows {
		if t.Rows[i].Disclosure.IsOpen() {
			return &t.Rows[i]
		}
	}
	return nil
}

// BuildTable turns a pools query into table rows. While the first fetch is
// running no rows are produced. The first row whose ID equals open has its
// overlay opened, so a link keeps pointing at the same pool when a refetch
// reorders the list.
func BuildTable(state query.State[model.PoolList], filter ChainFilter, open string) Table {
	t := Table{Columns: poolColumns}
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
	t.Total = len(state.Data)
	for i, p := range filter.Apply(state.Data) {
		row := newRow(i, p)
		if open != "" && row.ID == open && t.Overlay() == nil {
			row.Disclosure.Open()
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func newRow(i int, p model.Pool) Row {
	row := Row{
		Index:   i,
		Chain:   p.Chain(),
		Address: p.Address(),
	}
	row.ID = row.Address
	if row.ID == "" {
		row.ID = "#" + strconv.Itoa(i)
	}

	var texts []string
	switch v := p.(type) {
	case *model.OsmosisPool:
		texts = osmosisCells(v)
		row.Details = osmosisDetails(v)
	case *model.JunoPool:
		texts = pairCells(v.Chain(), &v.PairPool)
		row.Details = pairDetails(&v.PairPool)
	case *model.OtherPool:
		texts = pairCells(v.Chain(), &v.PairPool)
		row.Details = pairDetails(&v.PairPool)
	}

	row.Cells = make([]Cell, len(texts))
	for i, text := range texts {
		row.Cells[i] = Cell{Text: text, Numeric: poolColumns[i].Numeric}
	}
	return row
}

func pairCells(chain model.Chain, p *model.PairPool) []string {
	return []string{
		chain.String(),
		p.Token1.SymbolOr(p.Token1Denom.Value()),
		p.Token2.SymbolOr(p.Token2Denom.Value()),
		p.Address(),
		deref(p.Token1Reserve),
		deref(p.Token2Reserve),
	}
}

func pairDetails(p *model.PairPool) []Field {
	return []Field{
		{Label: "Pool Address", Value: p.Address()},
		{Label: p.Token1.SymbolOr("Token 1"), Value: p.Token1.AddressOr(p.Token1Denom.Value())},
		{Label: p.Token2.SymbolOr("Token 2"), Value: p.Token2.AddressOr(p.Token2Denom.Value())},
		{Label: "LP Token", Value: deref(p.LPTokenAddress)},
		{Label: "LP Supply", Value: deref(p.LPTokenSupply)},
	}
}

// osmosisCells shows the first two assets; any further ones are summarized
// as "+N" next to the second.
func osmosisCells(p *model.OsmosisPool) []string {
	cells := []string{p.Chain().String(), "", "", p.PoolAddress, "", ""}
	assets := p.PoolAssets
	if len(assets) > 0 {
		cells[1] = assets[0].Token.DisplayName()
		cells[4] = assets[0].Token.Amount
	}
	if len(assets) > 1 {
		cells[2] = assets[1].Token.DisplayName()
		cells[5] = assets[1].Token.Amount
	}
	if len(assets) > 2 {
		cells[2] += fmt.Sprintf(" +%d", len(assets)-2)
	}
	return cells
}

func osmosisDetails(p *model.OsmosisPool) []Field {
	fields := []Field{
		{Label: "Pool Address", Value: p.PoolAddress},
		{Label: "Pool ID", Value: p.ID},
	}
	if p.PoolParams != nil {
		fields = append(fields, Field{Label: "Swap Fee", Value: p.PoolParams.SwapFee})
	}
	for _, a := range p.PoolAssets {
		fields = append(fields, Field{
			Label: a.Token.DisplayName(),
			Value: fmt.Sprintf("%s (weight %s)", a.Token.Denom, a.Weight),
		})
	}
	if p.TotalWeight != "" {
		fields = append(fields, Field{Label: "Total Weight", Value: p.TotalWeight})
	}
	return fields
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
