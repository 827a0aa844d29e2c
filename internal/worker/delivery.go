package worker

import (
	"time"

	"github.com/google/uuid"

	"github.com/hll-crcon/stats-hooks/internal/hooks"
)

const maxErrorLen = 512

// Delivery is the audit record of one hook run.
type Delivery struct {
	ID            uuid.UUID
	JobID         uuid.UUID
	Timestamp     time.Time
	Server        string
	Hook          string
	Trigger       string
	PlayerID      string
	Platform      string
	Recipients    uint32
	MessageLength uint32
	VIPGranted    uint16
	VIPAlready    uint16
	DurationMs    uint32
	Status        string
	ErrorKind     string
	Error         string
}

func newDelivery(job Job, o hooks.Outcome) Delivery {
	d := Delivery{
		ID:            uuid.New(),
		JobID:         job.ID,
		Timestamp:     job.Received.UTC(),
		Server:        job.Event.Server,
		Hook:          o.Hook,
		Trigger:       string(o.Trigger),
		PlayerID:      o.PlayerID,
		Platform:      o.Platform,
		Recipients:    uint32(max(o.Recipients, 0)),
		MessageLength: uint32(max(o.MessageLen, 0)),
		VIPGranted:    uint16(max(o.VIPGranted, 0)),
		VIPAlready:    uint16(max(o.VIPAlready, 0)),
		DurationMs:    uint32(o.Duration.Milliseconds()),
		Status:        "delivered",
	}

	if o.Err != nil {
		d.Status = "failed"
		if o.Recipients > 0 {
			d.Status = "partial"
		}
		d.ErrorKind = string(hooks.KindOf(o.Err))
		d.Error = truncate(o.Err.Error(), maxErrorLen)
	}
	return d
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
