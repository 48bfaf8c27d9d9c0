package models

// RawTradeRecord is the untyped, per-row output of a format adapter. Every
// field is the vendor's cell content after column mapping but before type
// coercion; the validator turns it into a Trade or rejects it.
type RawTradeRecord struct {
	Row int `json:"row"` // 1-based spreadsheet row the record came from

	TradeDate    string `json:"trade_date"`
	TradeTime    string `json:"trade_time"`
	Symbol       string `json:"symbol"`
	SecurityName string `json:"security_name"`
	SecurityType string `json:"security_type"`
	Action       string `json:"action"`
	Quantity     string `json:"quantity"`
	Price        string `json:"price"`
	Amount       string `json:"amount"`
	Commission   string `json:"commission"`

	UnderlyingSymbol string `json:"underlying_symbol"`
	OptionType       string `json:"option_type"`
	StrikePrice      string `json:"strike_price"`
	ExpirationDate   string `json:"expiration_date"`

	Source      string `json:"source"`
	TradeRating string `json:"trade_rating"`
	TradeType   string `json:"trade_type"`
	Notes       string `json:"notes"`

	CloseDate     string `json:"close_date"`
	ClosePrice    string `json:"close_price"`
	CloseQuantity string `json:"close_quantity"`
	CloseReason   string `json:"close_reason"`

	Broker    string `json:"broker"`
	AccountID string `json:"account_id"`
}

// RowError reports one malformed row. Malformed rows never abort the file;
// they are collected while the remaining rows continue to be processed.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportReport summarizes one import run. Errors carries one entry per
// rejected row; rows the adapter drops as vendor noise (blank lines,
// non-executed orders) appear in no counter.
type ImportReport struct {
	BatchID    string     `json:"batch_id"`
	SourceFile string     `json:"source_file"`
	Broker     string     `json:"broker"`
	Imported   int        `json:"imported"`
	Skipped    int        `json:"skipped"`
	Errors     []RowError `json:"errors"`
}
