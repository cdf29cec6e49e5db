package stmts

import (
	"time"
)

// CreatedLayout is a fixed width RFC3339 layout, so that text comparison of
// created values matches time ordering.
const CreatedLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatCreated(t time.Time) string {
	return t.UTC().Format(CreatedLayout)
}
