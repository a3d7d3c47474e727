package prediction

import (
	"encoding/json"
	"strings"

	"github.com/dmitrijs2005/fraudwatch/internal/client/batch"
	"github.com/dmitrijs2005/fraudwatch/internal/client/client"
	"github.com/shopspring/decimal"
)

// Defaults are the scoring fields the editor does not collect.
type Defaults struct {
	MerchantCategoryCode int
	ResponseCode         int
}

// StandardDefaults is grocery-store MCC and an approved response.
var StandardDefaults = Defaults{MerchantCategoryCode: 5411, ResponseCode: 0}

// Map converts an editor record to the scoring schema. Only amount, card
// type and source are taken from the record.
func Map(r batch.Record, d Defaults) client.ScoringTransaction {
	return client.ScoringTransaction{
		Amount:               amount(r[batch.FieldAmount]),
		MerchantCategoryCode: d.MerchantCategoryCode,
		ResponseCode:         d.ResponseCode,
		CardType:             r[batch.FieldCardType],
		Source:               r[batch.FieldSource],
	}
}

// amount sends numeric input as a JSON number and anything else as the
// string the user typed.
func amount(raw string) any {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return json.Number(d.String())
}
