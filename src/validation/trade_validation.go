package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/utils"
)

// ErrValidationFailed is the sentinel wrapped by every field error so callers
// can classify validation failures with errors.Is.
var ErrValidationFailed = errors.New("validation failed")

// amountTolerance is how far a vendor-reported amount may drift from
// quantity x price before the row is rejected (currency rounding noise).
var amountTolerance = decimal.NewFromFloat(0.01)

// FieldError reports the specific field and rule a record violated.
type FieldError struct {
	Row    int
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("row %d: field %q: %s", e.Row, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidationFailed }

func fieldErr(row int, field, format string, args ...any) error {
	return &FieldError{Row: row, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ValidateRecord coerces a raw adapter record into a canonical Trade, applying
// the schema invariants. It is a pure function: the same record always yields
// the same Trade or the same error, and a Trade rebuilt from its own values
// validates to itself.
func ValidateRecord(raw models.RawTradeRecord) (models.Trade, error) {
	var t models.Trade

	tradeDate, err := utils.NormalizeDate(raw.TradeDate)
	if err != nil || tradeDate == "" {
		return t, fieldErr(raw.Row, "trade_date", "required ISO date, got %q", raw.TradeDate)
	}
	tradeTime, err := utils.NormalizeTime(raw.TradeTime)
	if err != nil {
		return t, fieldErr(raw.Row, "trade_time", "%v", err)
	}

	symbol := strings.ToUpper(strings.TrimSpace(raw.Symbol))
	if symbol == "" {
		return t, fieldErr(raw.Row, "symbol", "required")
	}

	action := strings.ToUpper(strings.TrimSpace(raw.Action))
	if action != models.ActionBuy && action != models.ActionSell {
		return t, fieldErr(raw.Row, "action", "must be BUY or SELL, got %q", raw.Action)
	}

	securityType := strings.ToUpper(strings.TrimSpace(raw.SecurityType))
	if securityType == "" {
		securityType = models.SecurityStock
	}
	if securityType != models.SecurityStock && securityType != models.SecurityOption {
		return t, fieldErr(raw.Row, "security_type", "must be STOCK or OPTION, got %q", raw.SecurityType)
	}

	quantity, err := parseQuantity(raw.Quantity)
	if err != nil {
		return t, fieldErr(raw.Row, "quantity", "%v", err)
	}
	price, err := parseMoney(raw.Price, decimal.Zero)
	if err != nil {
		return t, fieldErr(raw.Row, "price", "%v", err)
	}
	commission, err := parseMoney(raw.Commission, decimal.Zero)
	if err != nil {
		return t, fieldErr(raw.Row, "commission", "%v", err)
	}

	t = models.Trade{
		TradeDate:    tradeDate,
		TradeTime:    tradeTime,
		Symbol:       symbol,
		SecurityName: strings.TrimSpace(raw.SecurityName),
		SecurityType: securityType,
		Action:       action,
		Quantity:     quantity,
		Price:        price,
		Commission:   commission,
		Source:       strings.TrimSpace(raw.Source),
		TradeType:    strings.TrimSpace(raw.TradeType),
		Notes:        strings.TrimSpace(raw.Notes),
		CloseReason:  strings.TrimSpace(raw.CloseReason),
		Broker:       strings.TrimSpace(raw.Broker),
		AccountID:    strings.TrimSpace(raw.AccountID),
	}

	if raw.TradeRating != "" {
		rating, err := parseQuantityAllowZero(raw.TradeRating)
		if err != nil {
			return models.Trade{}, fieldErr(raw.Row, "trade_rating", "%v", err)
		}
		t.TradeRating = int(rating)
	}

	if securityType == models.SecurityOption {
		t.UnderlyingSymbol = strings.ToUpper(strings.TrimSpace(raw.UnderlyingSymbol))
		t.OptionType = strings.ToUpper(strings.TrimSpace(raw.OptionType))
		t.ExpirationDate, err = utils.NormalizeDate(raw.ExpirationDate)
		if err != nil {
			return models.Trade{}, fieldErr(raw.Row, "expiration_date", "%v", err)
		}
		t.StrikePrice, err = parseMoney(raw.StrikePrice, decimal.Zero)
		if err != nil {
			return models.Trade{}, fieldErr(raw.Row, "strike_price", "%v", err)
		}
	}

	if raw.CloseDate != "" {
		t.CloseDate, err = utils.NormalizeDate(raw.CloseDate)
		if err != nil {
			return models.Trade{}, fieldErr(raw.Row, "close_date", "%v", err)
		}
		t.ClosePrice, err = parseMoney(raw.ClosePrice, decimal.Zero)
		if err != nil {
			return models.Trade{}, fieldErr(raw.Row, "close_price", "%v", err)
		}
		if raw.CloseQuantity != "" {
			t.CloseQuantity, err = parseQuantityAllowZero(raw.CloseQuantity)
			if err != nil {
				return models.Trade{}, fieldErr(raw.Row, "close_quantity", "%v", err)
			}
		}
	}

	// Reconcile the vendor-reported amount against quantity x price before the
	// invariant pass fixes the canonical value.
	if strings.TrimSpace(raw.Amount) != "" {
		amount, err := parseMoney(raw.Amount, decimal.Zero)
		if err != nil {
			return models.Trade{}, fieldErr(raw.Row, "amount", "%v", err)
		}
		computed := price.Mul(decimal.NewFromInt(quantity))
		if amount.Sub(computed).Abs().GreaterThan(amountTolerance) {
			return models.Trade{}, fieldErr(raw.Row, "amount",
				"%s not reconcilable with quantity x price = %s", amount.StringFixed(2), computed.StringFixed(2))
		}
	}

	normalized, err := NormalizeTrade(t)
	if err != nil {
		if fe, ok := err.(*FieldError); ok {
			fe.Row = raw.Row
		}
		return models.Trade{}, err
	}
	return normalized, nil
}

// NormalizeTrade applies the schema invariants to an already-typed trade and
// returns the normalized copy: derived money fields recomputed, option fields
// cleared on STOCK trades, fingerprint refreshed. Used both by ValidateRecord
// and by the CRUD update path so edits cannot leave a trade inconsistent.
func NormalizeTrade(t models.Trade) (models.Trade, error) {
	if t.Symbol == "" {
		return t, fieldErr(0, "symbol", "required")
	}
	if t.Action != models.ActionBuy && t.Action != models.ActionSell {
		return t, fieldErr(0, "action", "must be BUY or SELL, got %q", t.Action)
	}
	if t.SecurityType != models.SecurityStock && t.SecurityType != models.SecurityOption {
		return t, fieldErr(0, "security_type", "must be STOCK or OPTION, got %q", t.SecurityType)
	}
	if t.Quantity <= 0 {
		return t, fieldErr(0, "quantity", "must be a positive integer, got %d", t.Quantity)
	}
	if t.Price.IsNegative() {
		return t, fieldErr(0, "price", "must be non-negative, got %s", t.Price)
	}
	if t.Commission.IsNegative() {
		return t, fieldErr(0, "commission", "must be non-negative, got %s", t.Commission)
	}
	if t.TradeRating < 0 || t.TradeRating > 5 {
		return t, fieldErr(0, "trade_rating", "must be in 0..5, got %d", t.TradeRating)
	}
	if _, err := utils.NormalizeDate(t.TradeDate); err != nil || t.TradeDate == "" {
		return t, fieldErr(0, "trade_date", "required ISO date, got %q", t.TradeDate)
	}

	switch t.SecurityType {
	case models.SecurityOption:
		if t.UnderlyingSymbol == "" {
			return t, fieldErr(0, "underlying_symbol", "required for OPTION trades")
		}
		if t.OptionType != models.OptionCall && t.OptionType != models.OptionPut {
			return t, fieldErr(0, "option_type", "must be CALL or PUT, got %q", t.OptionType)
		}
		if t.ExpirationDate == "" {
			return t, fieldErr(0, "expiration_date", "required for OPTION trades")
		}
		if t.StrikePrice.IsNegative() {
			return t, fieldErr(0, "strike_price", "must be non-negative, got %s", t.StrikePrice)
		}
	case models.SecurityStock:
		// Option fields are cleared, never silently retained, when the trade is
		// (or becomes) a stock trade.
		t.UnderlyingSymbol = ""
		t.OptionType = ""
		t.StrikePrice = decimal.Zero
		t.ExpirationDate = ""
	}

	t.Price = utils.Round2(t.Price)
	t.Commission = utils.Round2(t.Commission)
	t.StrikePrice = utils.Round2(t.StrikePrice)
	t.ClosePrice = utils.Round2(t.ClosePrice)
	t.Amount = utils.Round2(t.Price.Mul(decimal.NewFromInt(t.Quantity)))
	if t.Action == models.ActionBuy {
		t.NetAmount = t.Amount.Add(t.Commission)
	} else {
		t.NetAmount = t.Amount.Sub(t.Commission)
	}
	t.Fingerprint = t.ComputeFingerprint()
	return t, nil
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	return s
}

func parseMoney(s string, fallback decimal.Decimal) (decimal.Decimal, error) {
	s = cleanNumber(s)
	if s == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	return d, nil
}

func parseQuantity(s string) (int64, error) {
	q, err := parseQuantityAllowZero(s)
	if err != nil {
		return 0, err
	}
	if q <= 0 {
		return 0, fmt.Errorf("must be a positive integer, got %d", q)
	}
	return q, nil
}

// parseQuantityAllowZero accepts integral values, including spreadsheet floats
// like "100.0", and rejects fractional quantities.
func parseQuantityAllowZero(s string) (int64, error) {
	s = cleanNumber(s)
	if s == "" {
		return 0, fmt.Errorf("required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("must be a whole number, got %q", s)
	}
	return d.IntPart(), nil
}
