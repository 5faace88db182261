// Package recorder keeps a history of generated signals for later analysis.
package recorder

import "PortfolioSentinel/internal/model"

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordSignal(sig model.Signal, freq model.Frequency) error
	Close() error
}
