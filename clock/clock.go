package clock

import (
	"strconv"
	"time"
)

// Unsynced replaces both renderings of a stamp until the clock has synchronized.
const Unsynced = "NTP Error!"

// ISOLayout is local wall time without a zone suffix.
const ISOLayout = "2006-01-02T15:04:05"

// Stamp is one clock read rendered the two ways the store wants it.
type Stamp struct {
	Key string // unix seconds, used as the record key
	ISO string // local time
}

// Source returns the current stamp, or false and the Unsynced stamp when it has no trusted time.
type Source interface {
	Now() (Stamp, bool)
}

// Render formats t in loc.
func Render(t time.Time, loc *time.Location) Stamp {
	if loc == nil {
		loc = time.Local
	}
	return Stamp{
		Key: strconv.FormatInt(t.Unix(), 10),
		ISO: t.In(loc).Format(ISOLayout),
	}
}

// Unsynchronized is the stamp used before the first sync.
func Unsynchronized() Stamp {
	return Stamp{Key: Unsynced, ISO: Unsynced}
}

// Fixed always returns the same time. Useful for tests.
type Fixed struct {
	T      time.Time
	Loc    *time.Location
	Synced bool
}

func (f Fixed) Now() (Stamp, bool) {
	if !f.Synced {
		return Unsynchronized(), false
	}
	return Render(f.T, f.Loc), true
}
