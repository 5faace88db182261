package indicator

import (
	"errors"
	"fmt"

	"PortfolioSentinel/internal/model"
)

// ErrNonFinite is recorded when an input close or a computed value is NaN or infinite.
var ErrNonFinite = errors.New("non-finite value")

// InsufficientDataError reports a series shorter than the indicator window.
// The caller can pick a shorter window or wait for more history.
type InsufficientDataError struct {
	Type      model.IndicatorType
	Required  int
	Available int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need %d bars, have %d", e.Type, e.Required, e.Available)
}

// InvalidParamsError reports a malformed indicator configuration.
type InvalidParamsError struct {
	Type   model.IndicatorType
	Reason string
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf("%s: invalid params: %s", e.Type, e.Reason)
}
