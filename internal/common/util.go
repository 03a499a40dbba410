package common

import (
	"time"

	"github.com/google/uuid"
)

// GenerateID returns a new opaque record identifier. Ids are generated
// client-side and must be globally unique within a user's data.
func GenerateID() string {
	return uuid.NewString()
}

// Today returns the current local date formatted as YYYY-MM-DD, the format
// every date-indexed record field uses.
func Today() string {
	return time.Now().Format("2006-01-02")
}

// NowMillis returns the current time as epoch milliseconds, the timestamp
// unit stored on records.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
