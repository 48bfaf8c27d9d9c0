package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
)

// Security types for the canonical trade schema.
const (
	SecurityStock  = "STOCK"
	SecurityOption = "OPTION"
)

// Trade actions.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// Option types.
const (
	OptionCall = "CALL"
	OptionPut  = "PUT"
)

// Provenance tags a trade annotation may carry. The empty string means untagged.
var SourceTags = []string{
	"whale", "community", "judgment", "social_media", "news", "technical", "other",
}

// Trade type tags.
var TradeTypeTags = []string{
	"intraday", "short_term", "swing", "long_term", "arbitrage", "other",
}

// Close reason tags for manually annotated closures.
var CloseReasonTags = []string{
	"take_profit", "stop_loss", "scale_up", "scale_down", "expiration",
	"breaking_news", "cash_need", "other",
}

// Trade is the unified, validated representation of one buy/sell execution,
// independent of the brokerage export it came from. Money fields are fixed to
// two decimal places by the validator; dates are ISO calendar dates
// ("2006-01-02") and times are "15:04:05".
type Trade struct {
	ID         int64  `json:"id,omitempty"`
	SourceFile string `json:"source_file,omitempty"`
	ImportTime string `json:"import_time,omitempty"`

	SecurityType string `json:"security_type"` // STOCK or OPTION
	Action       string `json:"action"`        // BUY or SELL

	Symbol       string `json:"symbol"`
	SecurityName string `json:"security_name,omitempty"`

	// Option contract fields; zero values on STOCK trades. A zero StrikePrice on
	// an OPTION trade means the strike is unknown (compact vendor symbols omit it).
	UnderlyingSymbol string          `json:"underlying_symbol,omitempty"`
	OptionType       string          `json:"option_type,omitempty"` // CALL or PUT
	StrikePrice      decimal.Decimal `json:"strike_price"`
	ExpirationDate   string          `json:"expiration_date,omitempty"`

	TradeDate  string          `json:"trade_date"`
	TradeTime  string          `json:"trade_time"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Commission decimal.Decimal `json:"commission"`
	Amount     decimal.Decimal `json:"amount"`     // quantity x price, unsigned magnitude
	NetAmount  decimal.Decimal `json:"net_amount"` // amount +/- commission per action cash flow

	// User annotations, orthogonal to execution facts.
	Source      string `json:"source,omitempty"`
	TradeRating int    `json:"trade_rating"` // 0-5, 0 = unrated
	TradeType   string `json:"trade_type,omitempty"`
	Notes       string `json:"notes,omitempty"`

	// Manual closure annotation. The position matcher ignores these; they exist
	// for user-recorded closes only.
	CloseDate     string          `json:"close_date,omitempty"`
	ClosePrice    decimal.Decimal `json:"close_price"`
	CloseQuantity int64           `json:"close_quantity"`
	CloseReason   string          `json:"close_reason,omitempty"`

	Broker    string `json:"broker,omitempty"`
	AccountID string `json:"account_id,omitempty"`

	Fingerprint string `json:"-"`
}

// ContractKey identifies the matching bucket a trade belongs to. Stock trades
// match per symbol; option trades match per distinct contract.
func (t *Trade) ContractKey() string {
	if t.SecurityType == SecurityOption {
		return fmt.Sprintf("%s|%s|%s|%s|%s",
			t.Symbol, t.UnderlyingSymbol, t.OptionType, t.StrikePrice.String(), t.ExpirationDate)
	}
	return t.Symbol
}

// ComputeFingerprint derives the duplicate-detection key for this trade.
// Two rows with the same fingerprint are considered the same execution even
// across separate uploads of overlapping export ranges.
func (t *Trade) ComputeFingerprint() string {
	input := fmt.Sprintf("%s|%s|%s|%s|%d|%s|%s",
		t.Symbol, t.TradeDate, t.TradeTime, t.Action, t.Quantity, t.Price.String(), t.Broker)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// TradeFilter narrows trade snapshots fetched from storage. Zero values mean
// "no constraint". Dates are inclusive ISO calendar dates.
type TradeFilter struct {
	Symbol       string `json:"symbol,omitempty"`
	SecurityType string `json:"security_type,omitempty"`
	Source       string `json:"source,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

// TradeUpdate carries a partial edit of a trade; nil fields are left untouched.
type TradeUpdate struct {
	SecurityType *string `json:"security_type,omitempty"`
	Action       *string `json:"action,omitempty"`
	Symbol       *string `json:"symbol,omitempty"`
	SecurityName *string `json:"security_name,omitempty"`

	UnderlyingSymbol *string          `json:"underlying_symbol,omitempty"`
	OptionType       *string          `json:"option_type,omitempty"`
	StrikePrice      *decimal.Decimal `json:"strike_price,omitempty"`
	ExpirationDate   *string          `json:"expiration_date,omitempty"`

	TradeDate  *string          `json:"trade_date,omitempty"`
	TradeTime  *string          `json:"trade_time,omitempty"`
	Quantity   *int64           `json:"quantity,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Commission *decimal.Decimal `json:"commission,omitempty"`

	Source      *string `json:"source,omitempty"`
	TradeRating *int    `json:"trade_rating,omitempty"`
	TradeType   *string `json:"trade_type,omitempty"`
	Notes       *string `json:"notes,omitempty"`

	CloseDate     *string          `json:"close_date,omitempty"`
	ClosePrice    *decimal.Decimal `json:"close_price,omitempty"`
	CloseQuantity *int64           `json:"close_quantity,omitempty"`
	CloseReason   *string          `json:"close_reason,omitempty"`

	Broker    *string `json:"broker,omitempty"`
	AccountID *string `json:"account_id,omitempty"`
}
