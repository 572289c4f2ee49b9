package domain

import (
	"encoding/json"
	"time"
)

// Timestamps are reported in the exchange's civic time.
var IST = time.FixedZone("IST", 5*3600+30*60)

// TimestampLayout is the sortable literal used in report headers and
// snapshot file names.
const TimestampLayout = "2006-01-02_15-04-05"

// RawPayloads keeps the provider's unparsed responses for debug echo.
// They are opaque: nothing downstream reads into them.
type RawPayloads struct {
	Holdings     json.RawMessage
	DayPositions json.RawMessage
	NetPositions json.RawMessage
	Margins      json.RawMessage
}

// Snapshot is the full portfolio state captured by one run. It is built
// once after fetch and never mutated afterwards; sorting and metric
// derivation work on copies.
type Snapshot struct {
	Holdings     []Holding
	DayPositions []Position
	NetPositions []Position
	Funds        Funds
	CapturedAt   time.Time
	Raw          RawPayloads
}

// Stamp returns the capture time formatted for headers and file names.
func (s *Snapshot) Stamp() string {
	return s.CapturedAt.In(IST).Format(TimestampLayout)
}
