package time

import (
	"time"
)

const (
	TimeFormatCommonStyleDay = "2006-01-02"
	TimeFormatCommonStyleMin = "2006-01-02 15:04"
	TimeFormatCommonStyleSec = "2006-01-02 15:04:05"
)

// GetNowTimestamp returns the current time as epoch milliseconds, the unit
// every API timestamp uses.
func GetNowTimestamp() int64 {
	return time.Now().UnixNano() / 1000000
}

func GetNowTimeByFormat(format string) string {
	return time.Now().Format(format)
}

// ConvertInt64ToStr renders epoch milliseconds in the common second format.
func ConvertInt64ToStr(timestamp int64) string {
	return time.Unix(timestamp/1000, 0).Format(TimeFormatCommonStyleSec)
}

// ToTimestamp converts a time.Time to epoch milliseconds, zero time to 0.
func ToTimestamp(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano() / 1000000
}
