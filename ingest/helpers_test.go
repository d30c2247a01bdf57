package ingest

import "time"

func time0() time.Time {
	return time.Date(1900, time.January, 1, 0, 0, 0, 0, time.Local)
}
