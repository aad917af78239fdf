package common

import "time"

const timeFormatISO8601 = "2006-01-02T15:04:05.000000000Z07:00"

func FormatISO8601(t time.Time) string {
	return t.Format(timeFormatISO8601)
}

func NowISO8601() string {
	return FormatISO8601(time.Now())
}

func ParseISO8601(s string) (time.Time, error) {
	return time.Parse(timeFormatISO8601, s)
}
