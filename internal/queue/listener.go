package queue

import (
	"context"

	"rideshare/internal/attendance"
)

// AttendanceListener publishes a TypeAttendanceChanged message for every saved record.
type AttendanceListener struct {
	Publisher Publisher
}

var _ attendance.Listener = AttendanceListener{}

func (l AttendanceListener) AttendanceChanged(ctx context.Context, rec attendance.Record) error {
	return l.Publisher.Publish(ctx, AttendanceChangedMessage(rec.UserID, rec.EventID))
}
