package model

// Reading is one raw sample from the distance sensor. It is produced once
// per cycle and consumed immediately, never retained.
type Reading struct {
	Value int  `json:"value"`
	Valid bool `json:"valid"`
}

// TempDisconnected is the sentinel returned by temperature probes that are
// not wired up (tenths of a degree Celsius, below absolute zero).
const TempDisconnected = -2732
