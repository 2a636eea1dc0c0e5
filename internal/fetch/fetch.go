package fetch

import (
	"context"
	"time"

	"macrolens/internal/timeseries"
)

// BackfillStart is the earliest date requested when an indicator has no
// stored history yet.
var BackfillStart = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

// Source is one external data provider. Implementations are stateless and
// safe for concurrent use; throttling is the caller's job.
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbol string, backfill bool) (timeseries.Series, error)
}

// recentWindow is how far back incremental (non-backfill) fetches reach.
// Wide enough to bridge provider publishing lags on weekly series.
const recentWindow = 90 * 24 * time.Hour

func startDate(backfill bool) time.Time {
	if backfill {
		return BackfillStart
	}
	return time.Now().UTC().Add(-recentWindow)
}
