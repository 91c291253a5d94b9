package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Pool is one of *JunoPool, *OsmosisPool or *OtherPool. Chain specific fields
// are only reachable after a type switch on the concrete variant.
type Pool interface {
	Chain() Chain
	Address() string
	isPool()
}

// PairPool is the two-token shape served for cosmwasm pair contracts.
type PairPool struct {
	PoolAddress    *string `json:"pool_address"`
	LPTokenAddress *string `json:"lp_token_address"`
	LPTokenSupply  *string `json:"lp_token_supply"`
	Token1         *Token  `json:"token1"`
	Token1Denom    *Denom  `json:"token1_denom"`
	Token1Reserve  *string `json:"token1_reserve"`
	Token2         *Token  `json:"token2"`
	Token2Denom    *Denom  `json:"token2_denom"`
	Token2Reserve  *string `json:"token2_reserve"`
}

func (p *PairPool) Address() string {
	if p.PoolAddress == nil {
		return ""
	}
	return *p.PoolAddress
}

type JunoPool struct {
	PairPool
}

func (*JunoPool) Chain() Chain { return ChainJuno }
func (*JunoPool) isPool()      {}

func (p *JunoPool) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Chain Chain `json:"chain"`
		PairPool
	}{ChainJuno, p.PairPool})
}

// OtherPool keeps pools of chains this build does not know about.
type OtherPool struct {
	Tag Chain
	PairPool
}

func (p *OtherPool) Chain() Chain { return p.Tag }
func (*OtherPool) isPool()        {}

func (p *OtherPool) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Chain Chain `json:"chain"`
		PairPool
	}{p.Tag, p.PairPool})
}

type PoolParams struct {
	SwapFee string `json:"swap_fee"`
	ExitFee string `json:"exit_fee"`
}

type PoolToken struct {
	Denom      string  `json:"denom"`
	Amount     string  `json:"amount"`
	NativeName *string `json:"native_name"`
}

// DisplayName prefers the resolved ibc base denom over the raw denom.
func (t PoolToken) DisplayName() string {
	if t.NativeName != nil && *t.NativeName != "" {
		return *t.NativeName
	}
	return t.Denom
}

type PoolAsset struct {
	Token  PoolToken `json:"token"`
	Weight string    `json:"weight"`
}

// OsmosisPool is a gamm weighted pool with any number of assets.
type OsmosisPool struct {
	PoolAddress        string      `json:"pool_address"`
	ID                 string      `json:"id"`
	PoolParams         *PoolParams `json:"pool_params"`
	FuturePoolGovernor string      `json:"future_pool_governor"`
	TotalShares        *PoolToken  `json:"total_shares"`
	PoolAssets         []PoolAsset `json:"pool_assets"`
	TotalWeight        string      `json:"total_weight"`
}

type osmosisPoolAlias OsmosisPool

func (*OsmosisPool) Chain() Chain { return ChainOsmosis }
func (*OsmosisPool) isPool()      {}

func (p *OsmosisPool) Address() string { return p.PoolAddress }

func (p *OsmosisPool) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Chain Chain `json:"chain"`
		*osmosisPoolAlias
	}{ChainOsmosis, (*osmosisPoolAlias)(p)})
}

// DecodePool picks the variant from the "chain" tag. Juno pools are served
// without a tag, so an untagged object is osmosis when it carries pool_assets
// and juno otherwise.
func DecodePool(data []byte) (Pool, error) {
	var head struct {
		Chain      *string         `json:"chain"`
		PoolAssets json.RawMessage `json:"pool_assets"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode pool: %w", err)
	}

	tag := ChainJuno
	if head.Chain != nil && *head.Chain != "" {
		tag, _ = ParseChain(*head.Chain)
	} else if len(head.PoolAssets) > 0 && !bytes.Equal(head.PoolAssets, []byte("null")) {
		tag = ChainOsmosis
	}

	switch tag {
	case ChainJuno:
		p := &JunoPool{}
		if err := json.Unmarshal(data, &p.PairPool); err != nil {
			return nil, fmt.Errorf("decode juno pool: %w", err)
		}
		return p, nil
	case ChainOsmosis:
		p := &OsmosisPool{}
		if err := json.Unmarshal(data, (*osmosisPoolAlias)(p)); err != nil {
			return nil, fmt.Errorf("decode osmosis pool: %w", err)
		}
		return p, nil
	default:
		p := &OtherPool{Tag: tag}
		if err := json.Unmarshal(data, &p.PairPool); err != nil {
			return nil, fmt.Errorf("decode %s pool: %w", tag, err)
		}
		return p, nil
	}
}

// PoolList decodes a JSON array of mixed-chain pools.
type PoolList []Pool

func (l *PoolList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("decode pool list: %w", err)
	}

	pools := make(PoolList, 0, len(raws))
	for i, raw := range raws {
		p, err := DecodePool(raw)
		if err != nil {
			return fmt.Errorf("pool %d: %w", i, err)
		}
		pools = append(pools, p)
	}
	*l = pools
	return nil
}

// PoolBox wraps a single pool so it can travel through JSON generically.
type PoolBox struct {
	Pool Pool
}

func (b *PoolBox) UnmarshalJSON(data []byte) error {
	p, err := DecodePool(data)
	if err != nil {
		return err
	}
	b.Pool = p
	return nil
}

func (b PoolBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Pool)
}
