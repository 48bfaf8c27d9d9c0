package parsers

import (
	"errors"
	"fmt"

	"github.com/username/tradefolio/backend/src/logger"
)

// ErrUnrecognizedFormat is returned when no adapter's confidence reaches the
// selection threshold; the import is aborted and nothing is persisted.
var ErrUnrecognizedFormat = errors.New("unrecognized export format")

// selectionThreshold is the minimum CanHandle confidence an adapter must
// reach to claim a file during structural sniffing.
const selectionThreshold = 0.8

// Registry returns the closed set of supported adapters, most specific first.
// Order matters only for confidence ties, where the earlier adapter wins.
func Registry() []Adapter {
	return []Adapter{
		NewFutuAdapter(),
		NewTigerAdapter(),
		NewSnowballAdapter(),
		NewIBKRAdapter(),
		NewZhengxiongAdapter(),
	}
}

// GetAdapter resolves an explicit format hint to its adapter.
func GetAdapter(format string) (Adapter, error) {
	for _, a := range Registry() {
		if a.Name() == format {
			return a, nil
		}
	}
	return nil, fmt.Errorf("no adapter available for format: %s", format)
}

// SelectAdapter picks the adapter for a sheet: the explicit hint when given,
// otherwise the highest-confidence CanHandle score over the header row.
func SelectAdapter(sheet *Sheet, formatHint string) (Adapter, error) {
	if formatHint != "" {
		return GetAdapter(formatHint)
	}

	var best Adapter
	bestScore := 0.0
	for _, a := range Registry() {
		score := a.CanHandle(sheet.Header)
		logger.L.Debug("Adapter sniffing", "adapter", a.Name(), "confidence", score)
		if score > bestScore {
			best = a
			bestScore = score
		}
	}

	if best == nil || bestScore < selectionThreshold {
		return nil, fmt.Errorf("%w: best confidence %.2f below threshold %.2f",
			ErrUnrecognizedFormat, bestScore, selectionThreshold)
	}
	logger.L.Info("Adapter selected by sniffing", "adapter", best.Name(), "confidence", bestScore)
	return best, nil
}
