package clock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"go.uber.org/zap"
)

// NTPConfig controls how the clock is synchronized.
type NTPConfig struct {
	Server   string        `yaml:"ntp_server"`
	Location string        `yaml:"location"` // IANA name, "Local" or "UTC"
	Interval time.Duration `yaml:"sync_interval"`
	Retry    time.Duration `yaml:"retry_interval"` // used until the first sync succeeds
	Timeout  time.Duration `yaml:"timeout"`
}

// NTP keeps an offset from an NTP server and applies it to the local clock.
// Sync happens on its own goroutine; Now never blocks on the network.
type NTP struct {
	cfg   NTPConfig
	loc   *time.Location
	log   *zap.SugaredLogger
	query func(host string, opt ntp.QueryOptions) (*ntp.Response, error)
	now   func() time.Time

	mu     sync.RWMutex
	offset time.Duration
	synced bool
}

func NewNTP(cfg NTPConfig, log *zap.SugaredLogger) (*NTP, error) {
	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("clock location %q: %w", cfg.Location, err)
	}
	return &NTP{
		cfg:   cfg,
		loc:   loc,
		log:   log,
		query: ntp.QueryWithOptions,
		now:   time.Now,
	}, nil
}

// Sync queries the server once and stores the offset.
func (n *NTP) Sync() error {
	resp, err := n.query(n.cfg.Server, ntp.QueryOptions{Timeout: n.cfg.Timeout})
	if err != nil {
		return fmt.Errorf("query %s: %w", n.cfg.Server, err)
	}
	if err := resp.Validate(); err != nil {
		return fmt.Errorf("validate %s: %w", n.cfg.Server, err)
	}
	n.mu.Lock()
	n.offset = resp.ClockOffset
	n.synced = true
	n.mu.Unlock()
	return nil
}

// Run syncs until ctx is cancelled. Before the first success it retries
// every Retry, afterwards every Interval.
func (n *NTP) Run(ctx context.Context) {
	for {
		wait := n.cfg.Interval
		if err := n.Sync(); err != nil {
			n.log.Warnf("NTP sync failed: %v", err)
			if !n.Synced() {
				wait = n.cfg.Retry
			}
		} else {
			n.log.Debugf("NTP synced with %s, offset %s", n.cfg.Server, n.Offset())
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

func (n *NTP) Synced() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.synced
}

func (n *NTP) Offset() time.Duration {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.offset
}

func (n *NTP) Now() (Stamp, bool) {
	n.mu.RLock()
	synced, offset := n.synced, n.offset
	n.mu.RUnlock()
	if !synced {
		return Unsynchronized(), false
	}
	return Render(n.now().Add(offset), n.loc), true
}
