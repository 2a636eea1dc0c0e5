package indicators

import (
	"macrolens/internal/timeseries"
)

// Calculator is a pure computation unit for a derived indicator. Inputs
// declares the slugs the calculator needs, in the order Calculate expects
// them. Calculate never touches the network or the store.
type Calculator interface {
	Slug() string
	Inputs() []string
	Calculate(inputs []timeseries.Series) (timeseries.Series, error)
}
