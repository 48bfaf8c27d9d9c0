package parsers

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/username/tradefolio/backend/src/models"
)

// OptionContract is the decomposed form of a vendor option description.
// Strike may be empty when the vendor symbol does not carry it (compact form).
type OptionContract struct {
	Underlying string
	OptionType string // CALL or PUT
	Strike     string
	Expiration string // ISO date, may be empty for 4-digit compact dates
}

var (
	// Compact vendor form, e.g. "AVGO0919C" (MMDD) or "AVGO250919C" (YYMMDD).
	compactOptionRe = regexp.MustCompile(`^([A-Z]+)(\d{4}|\d{6})([CP])$`)
	// Spaced form, e.g. "AAPL 150C 2024-06-21".
	spacedOptionRe = regexp.MustCompile(`^([A-Z]+)\s+(\d+(?:\.\d+)?)([CP])\s+(\d{4}-\d{2}-\d{2})$`)
)

// ParseOptionSymbol decomposes an option description string. It returns
// ok=false when the symbol does not look like an option contract at all, in
// which case the record should be treated as a stock trade.
func ParseOptionSymbol(symbol string) (OptionContract, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if m := spacedOptionRe.FindStringSubmatch(symbol); m != nil {
		return OptionContract{
			Underlying: m[1],
			Strike:     m[2],
			OptionType: optionTypeFromChar(m[3]),
			Expiration: m[4],
		}, true
	}

	if m := compactOptionRe.FindStringSubmatch(symbol); m != nil {
		return OptionContract{
			Underlying: m[1],
			OptionType: optionTypeFromChar(m[3]),
			Expiration: expandCompactDate(m[2]),
		}, true
	}

	return OptionContract{}, false
}

func optionTypeFromChar(c string) string {
	if c == "P" {
		return models.OptionPut
	}
	return models.OptionCall
}

// expandCompactDate turns MMDD (current year assumed) or YYMMDD into an ISO
// date.
func expandCompactDate(digits string) string {
	switch len(digits) {
	case 4:
		return fmt.Sprintf("%d-%s-%s", time.Now().Year(), digits[:2], digits[2:])
	case 6:
		return fmt.Sprintf("20%s-%s-%s", digits[:2], digits[2:4], digits[4:])
	default:
		return digits
	}
}

// applyOptionFields fills the option columns of a raw record. Separate-column
// vendor fields win over anything decomposed from the symbol; a record with
// neither stays a stock trade.
//
// Option rows also drop any vendor-reported amount: vendors bake the contract
// multiplier into it, while the canonical amount is quantity x price.
func applyOptionFields(raw *models.RawTradeRecord) {
	defer func() {
		if raw.SecurityType == models.SecurityOption {
			raw.Amount = ""
		}
	}()
	hasSeparate := raw.StrikePrice != "" || raw.ExpirationDate != "" || raw.OptionType != ""
	if hasSeparate {
		raw.SecurityType = models.SecurityOption
		raw.OptionType = normalizeOptionType(raw.OptionType)
		// A compact symbol can still supply whatever the separate columns omit.
		if contract, ok := ParseOptionSymbol(raw.Symbol); ok {
			if raw.UnderlyingSymbol == "" {
				raw.UnderlyingSymbol = contract.Underlying
			}
			if raw.OptionType == "" {
				raw.OptionType = contract.OptionType
			}
			if raw.ExpirationDate == "" {
				raw.ExpirationDate = contract.Expiration
			}
		}
		if raw.UnderlyingSymbol == "" {
			raw.UnderlyingSymbol = raw.Symbol
		}
		return
	}

	if contract, ok := ParseOptionSymbol(raw.Symbol); ok {
		raw.SecurityType = models.SecurityOption
		raw.UnderlyingSymbol = contract.Underlying
		raw.OptionType = contract.OptionType
		if raw.StrikePrice == "" {
			raw.StrikePrice = contract.Strike
		}
		if raw.ExpirationDate == "" {
			raw.ExpirationDate = contract.Expiration
		}
		return
	}

	if raw.SecurityType == "" {
		raw.SecurityType = models.SecurityStock
	}
}

func normalizeOptionType(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "C", "CALL", "看涨":
		return models.OptionCall
	case "P", "PUT", "看跌":
		return models.OptionPut
	default:
		return strings.ToUpper(strings.TrimSpace(s))
	}
}
