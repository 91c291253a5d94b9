package view_test

import (
	"errors"
	"testing"

	"github.com/daubit/tracy-web/internal/module/pool/model"
	"github.com/daubit/tracy-web/internal/module/pool/view"
	"github.com/daubit/tracy-web/internal/module/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func junoPool(address, sym1, sym2 string) *model.JunoPool {
	return &model.JunoPool{PairPool: model.PairPool{
		PoolAddress:   str(address),
		Token1:        &model.Token{Symbol: str(sym1), Address: str("addr-" + sym1)},
		Token2:        &model.Token{Symbol: str(sym2), Address: str("addr-" + sym2)},
		Token1Reserve: str("100"),
		Token2Reserve: str("200"),
	}}
}

func osmosisPool(address string, denoms ...string) *model.OsmosisPool {
	p := &model.OsmosisPool{PoolAddress: address, ID: "7", PoolParams: &model.PoolParams{SwapFee: "0.003"}}
	for _, d := range denoms {
		p.PoolAssets = append(p.PoolAssets, model.PoolAsset{
			Token:  model.PoolToken{Denom: d, Amount: "1" + d},
			Weight: "1",
		})
	}
	return p
}

func loaded(pools ...model.Pool) query.State[model.PoolList] {
	return query.State[model.PoolList]{Data: pools, HasData: true, Status: query.StatusSuccess}
}

func mixedPools() model.PoolList {
	return model.PoolList{
		junoPool("juno1a", "A", "B"),
		osmosisPool("osmo1a", "uosmo", "uatom"),
		&model.OtherPool{Tag: "terra", PairPool: junoPool("terra1a", "C", "D").PairPool},
		junoPool("juno1b", "E", "F"),
	}
}

func TestBuildTableIncludeFilter(t *testing.T) {
	state := loaded(junoPool("juno1a", "A", "B"), osmosisPool("osmo1a", "uosmo", "uatom"))
	filter := view.NewChainFilter(view.FilterInclude, []string{"juno"})

	table := view.BuildTable(state, filter, "")

	require.Len(t, table.Rows, 1)
	assert.Equal(t, model.ChainJuno, table.Rows[0].Chain)
	assert.Equal(t, "A", table.Rows[0].Cells[1].Text)
	assert.Equal(t, "B", table.Rows[0].Cells[2].Text)
	assert.Equal(t, 2, table.Total)
}

func TestBuildTableRowCountMatchesFilter(t *testing.T) {
	pools := mixedPools()
	cases := []struct {
		name   string
		filter view.ChainFilter
	}{
		{"include none", view.NewChainFilter(view.FilterInclude, nil)},
		{"include juno", view.NewChainFilter(view.FilterInclude, []string{"juno"})},
		{"include juno and terra", view.NewChainFilter(view.FilterInclude, []string{"juno,terra"})},
		{"exclude none", view.NewChainFilter(view.FilterExclude, nil)},
		{"exclude juno", view.NewChainFilter(view.FilterExclude, []string{"juno"})},
		{"exclude all", view.NewChainFilter(view.FilterExclude, []string{"juno", "osmosis", "terra"})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			want := 0
			for _, p := range pools {
				if tc.filter.Allows(p.Chain()) {
					want++
				}
			}
			table := view.BuildTable(loaded(pools...), tc.filter, "")
			assert.Len(t, table.Rows, want)
		})
	}
}

func TestChainFilterSemantics(t *testing.T) {
	include := view.NewChainFilter(view.FilterInclude, []string{" Juno ", "juno"})
	assert.Equal(t, []string{"juno"}, include.Values())
	assert.True(t, include.Allows(model.ChainJuno))
	assert.False(t, include.Allows(model.ChainOsmosis))

	exclude := view.NewChainFilter(view.FilterExclude, []string{"juno"})
	assert.False(t, exclude.Allows(model.ChainJuno))
	assert.True(t, exclude.Allows(model.ChainOsmosis))

	assert.True(t, view.NewChainFilter(view.FilterInclude, nil).Allows("anything"))
	assert.Equal(t, view.FilterExclude, view.ParseFilterMode("EXCLUDE"))
	assert.Equal(t, view.FilterInclude, view.ParseFilterMode("bogus"))
}

func TestBuildTableLoadingHasNoRows(t *testing.T) {
	state := loaded(mixedPools()...)
	state.IsLoading = true
	state.Status = query.StatusLoading

	table := view.BuildTable(state, view.ChainFilter{}, "juno1a")

	assert.True(t, table.Loading())
	assert.Empty(t, table.Rows)
	assert.Nil(t, table.Overlay())
}

func TestBuildTableErrors(t *testing.T) {
	failed := query.State[model.PoolList]{Err: errors.New("backend unavailable"), Status: query.StatusError}
	table := view.BuildTable(failed, view.ChainFilter{}, "")
	assert.Equal(t, view.TableError, table.Status)
	assert.Equal(t, "backend unavailable", table.Error)
	assert.Empty(t, table.Rows)

	stale := loaded(junoPool("juno1a", "A", "B"))
	stale.Err = errors.New("refresh failed")
	table = view.BuildTable(stale, view.ChainFilter{}, "")
	assert.Equal(t, view.TableReady, table.Status)
	assert.Equal(t, "refresh failed", table.Error)
	assert.Len(t, table.Rows, 1)
}

func TestBuildTableOpensOnlyRequestedRow(t *testing.T) {
	table := view.BuildTable(loaded(mixedPools()...), view.ChainFilter{}, "terra1a")

	for i, row := range table.Rows {
		assert.Equal(t, i == 2, row.Disclosure.IsOpen(), "row %d", i)
	}
	require.NotNil(t, table.Overlay())
	assert.Equal(t, "terra1a", table.Overlay().Address)

	closed := view.BuildTable(loaded(mixedPools()...), view.ChainFilter{}, "juno1zzz")
	assert.Nil(t, closed.Overlay())
}

func TestBuildTableOverlayFollowsPoolAcrossReorder(t *testing.T) {
	pools := mixedPools()
	reordered := model.PoolList{pools[3], pools[2], pools[1], pools[0]}

	before := view.BuildTable(loaded(pools...), view.ChainFilter{}, "osmo1a")
	after := view.BuildTable(loaded(reordered...), view.ChainFilter{}, "osmo1a")

	require.NotNil(t, before.Overlay())
	require.NotNil(t, after.Overlay())
	assert.Equal(t, 1, before.Overlay().Index)
	assert.Equal(t, 2, after.Overlay().Index)
	assert.Equal(t, "osmo1a", after.Overlay().Address)
}

func TestBuildTableRowWithoutAddress(t *testing.T) {
	table := view.BuildTable(loaded(junoPool("", "A", "B"), junoPool("juno1b", "C", "D")), view.ChainFilter{}, "#0")

	assert.Equal(t, "#0", table.Rows[0].ID)
	assert.Equal(t, "juno1b", table.Rows[1].ID)
	require.NotNil(t, table.Overlay())
	assert.Equal(t, 0, table.Overlay().Index)
}

func TestOsmosisCells(t *testing.T) {
	pool := osmosisPool("osmo1a", "uosmo", "uatom", "uion", "ujuno")
	name := "ATOM"
	pool.PoolAssets[1].Token.NativeName = &name

	table := view.BuildTable(loaded(pool), view.ChainFilter{}, "osmo1a")
	require.Len(t, table.Rows, 1)
	cells := table.Rows[0].Cells

	assert.Equal(t, "osmosis", cells[0].Text)
	assert.Equal(t, "uosmo", cells[1].Text)
	assert.Equal(t, "ATOM +2", cells[2].Text)
	assert.Equal(t, "osmo1a", cells[3].Text)
	assert.Equal(t, "1uosmo", cells[4].Text)
	assert.True(t, cells[4].Numeric)

	details := table.Rows[0].Details
	assert.Equal(t, view.Field{Label: "Pool ID", Value: "7"}, details[1])
	assert.Equal(t, view.Field{Label: "Swap Fee", Value: "0.003"}, details[2])
}

func TestPairDetails(t *testing.T) {
	table := view.BuildTable(loaded(junoPool("juno1a", "A", "B")), view.ChainFilter{}, "")
	details := table.Rows[0].Details

	assert.Equal(t, view.Field{Label: "Pool Address", Value: "juno1a"}, details[0])
	assert.Equal(t, view.Field{Label: "A", Value: "addr-A"}, details[1])
	assert.Equal(t, view.Field{Label: "B", Value: "addr-B"}, details[2])
}

func TestDisclosure(t *testing.T) {
	var d view.Disclosure
	assert.False(t, d.IsOpen())

	d.Open()
	assert.True(t, d.IsOpen())
	d.Open()
	assert.True(t, d.IsOpen())

	d.Close()
	assert.False(t, d.IsOpen())
	d.Close()
	assert.False(t, d.IsOpen())
}

func TestPageQueryURL(t *testing.T) {
	q := view.PageQuery{Chains: []string{"juno"}, Denom: "ujuno"}
	assert.Equal(t, "/pools?chains=juno&denom=ujuno&open=juno1a", q.URL("/pools", "juno1a"))
	assert.Equal(t, "/pools?chains=juno&denom=ujuno&open=%230", q.URL("/pools", "#0"))
	assert.Equal(t, "/pools?chains=juno&denom=ujuno", q.URL("/pools", ""))
	assert.Equal(t, "/", view.PageQuery{}.URL("/", ""))

	assert.Equal(t, "juno1a", view.ParseOpen(" juno1a "))
	assert.Equal(t, "", view.ParseOpen(""))
}

func TestBuildQuotes(t *testing.T) {
	in := "100"
	out := "95"
	state := query.State[model.QuoteList]{
		HasData: true,
		Data: model.QuoteList{
			{TokenIn: jsonNumber(in), TokenOut: jsonNumber(out), PoolAddress: str("juno1a")},
			{Error: str("{no liquidity}")},
		},
	}

	table := view.BuildQuotes(state)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, view.QuoteRow{PoolAddress: "juno1a", TokenIn: "100", TokenOut: "95"}, table.Rows[0])
	assert.Equal(t, "{no liquidity}", table.Rows[1].Error)

	assert.True(t, view.BuildQuotes(query.State[model.QuoteList]{IsLoading: true}).Loading())
}

func TestQuoteFormValidate(t *testing.T) {
	assert.Equal(t, "", view.NewQuoteForm("ujuno", "uosmo", " 1000 ").Validate())
	assert.NotEmpty(t, view.NewQuoteForm("ujuno", "", "1").Validate())
	assert.NotEmpty(t, view.NewQuoteForm("ujuno", "ujuno", "1").Validate())
	assert.NotEmpty(t, view.NewQuoteForm("ujuno", "uosmo", "1.5").Validate())
	assert.NotEmpty(t, view.NewQuoteForm("ujuno", "uosmo", "000").Validate())
	assert.NotEmpty(t, view.NewQuoteForm("ujuno", "uosmo", "abc").Validate())
	assert.NotEmpty(t, view.NewQuoteForm("ujuno", "uosmo", "-5").Validate())

	// u128 bounds
	assert.Equal(t, "", view.NewQuoteForm("ujuno", "uosmo", "340282366920938463463374607431768211455").Validate())
	assert.Equal(t, "", view.NewQuoteForm("ujuno", "uosmo", "00340282366920938463463374607431768211455").Validate())
	assert.NotEmpty(t, view.NewQuoteForm("ujuno", "uosmo", "340282366920938463463374607431768211456").Validate())
	assert.NotEmpty(t, view.NewQuoteForm("ujuno", "uosmo", "1000000000000000000000000000000000000000").Validate())
	assert.True(t, view.NewQuoteForm("", "", "").Empty())
}
