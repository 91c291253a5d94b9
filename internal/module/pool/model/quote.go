package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Quote is the estimated output of one pool for a token-in amount. Amounts are
// u128 on the backend, so they stay json.Number.
type Quote struct {
	TokenIn     *json.Number `json:"token_in"`
	TokenOut    *json.Number `json:"token_out"`
	PoolAddress *string      `json:"pool_address"`
	Error       *string      `json:"error"`
}

func (q Quote) Failed() bool {
	return q.Error != nil && *q.Error != ""
}

// QuoteList accepts an array of quotes or a single quote object.
type QuoteList []Quote

func (l *QuoteList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var q Quote
		if err := json.Unmarshal(trimmed, &q); err != nil {
			return fmt.Errorf("decode quote: %w", err)
		}
		*l = QuoteList{q}
		return nil
	}

	var quotes []Quote
	if err := json.Unmarshal(trimmed, &quotes); err != nil {
		return fmt.Errorf("decode quote list: %w", err)
	}
	*l = quotes
	return nil
}
