package actuator

import (
	"sync"

	"go.uber.org/zap"
)

// Fake records output levels in memory. Digital outputs hold 0 or 1.
type Fake struct {
	mu     sync.Mutex
	levels map[Output]int
	writes int
	log    *zap.SugaredLogger
}

// NewFake returns a Fake that logs every write when log is non-nil.
func NewFake(log *zap.SugaredLogger) *Fake {
	return &Fake{levels: map[Output]int{}, log: log}
}

func (f *Fake) Digital(o Output, high bool) {
	v := 0
	if high {
		v = 1
	}
	f.set(o, v)
}

func (f *Fake) Analog(o Output, duty int) {
	f.set(o, duty)
}

func (f *Fake) set(o Output, v int) {
	f.mu.Lock()
	f.levels[o] = v
	f.writes++
	f.mu.Unlock()
	if f.log != nil {
		f.log.Debugf("Setting fake %s to: %d", o, v)
	}
}

// Level returns the last value written to o and whether it was ever written.
func (f *Fake) Level(o Output) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.levels[o]
	return v, ok
}

// Writes counts every output write since creation.
func (f *Fake) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}
