package export

import (
	"context"

	"leasegen/internal/core"
)

// ScheduleWriter is the outbound port for publishing a built payment
// schedule to an external ledger, one row per entry.
type ScheduleWriter interface {
	AppendSchedule(ctx context.Context, lease ScheduleMeta, entries []core.PaymentEntry) (ref string, err error)
}

// ScheduleMeta identifies which lease a schedule belongs to in the ledger.
type ScheduleMeta struct {
	Tenant   string
	Property string
	Start    core.Date
	End      core.Date
}
