package schedule

import (
	"reflect"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time      { return c.t }
func (c *fakeClock) add(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock { return &fakeClock{t: time.Unix(5000, 0)} }

func names(ns ...string) []string { return ns }

func noop(time.Time) {}

func counter(n *int) func(time.Time) { return func(time.Time) { *n++ } }

func TestFirstTickRunsEverythingInOrder(t *testing.T) {
	clk := newClock()
	s := New(clk.now)
	s.Every("actuators", 3*time.Second, noop)
	s.Every("report", time.Minute, noop)

	if got := s.Tick(); !reflect.DeepEqual(got, names("actuators", "report")) {
		t.Fatalf("first tick ran %v", got)
	}
	if got := s.Tick(); got != nil {
		t.Fatalf("nothing should be due right after running, ran %v", got)
	}
}

func TestPeriodBoundary(t *testing.T) {
	clk := newClock()
	s := New(clk.now)
	var runs int
	s.Every("actuators", 3*time.Second, counter(&runs))
	s.Tick()

	clk.add(2999 * time.Millisecond)
	s.Tick()
	if runs != 1 {
		t.Fatalf("task ran before its period elapsed")
	}
	clk.add(time.Millisecond)
	s.Tick()
	if runs != 2 {
		t.Fatalf("task should run once exactly the period has elapsed, runs=%d", runs)
	}
}

func TestBothDueFastPathFirst(t *testing.T) {
	clk := newClock()
	s := New(clk.now)
	var order []string
	s.Every("actuators", 3*time.Second, func(time.Time) { order = append(order, "actuators") })
	s.Every("report", 60*time.Second, func(time.Time) { order = append(order, "report") })
	s.Tick()
	order = nil

	clk.add(60 * time.Second)
	s.Tick()
	if !reflect.DeepEqual(order, names("actuators", "report")) {
		t.Fatalf("expected actuators before report, got %v", order)
	}
}

func TestOverrunDoesNotCatchUp(t *testing.T) {
	clk := newClock()
	s := New(clk.now)
	var runs int
	s.Every("slow", 3*time.Second, func(time.Time) {
		runs++
		clk.add(10 * time.Second) // run takes longer than three periods
	})
	s.Tick()
	s.Tick()
	if runs != 2 {
		t.Fatalf("expected one run per tick, got %d", runs)
	}
	if got := s.NextDue(); !got.Equal(clk.t.Add(-10*time.Second).Add(3*time.Second)) {
		t.Fatalf("next due should follow the last start, got %v", got)
	}
}

func TestLaterTaskSeesTimeSpentByEarlierOne(t *testing.T) {
	clk := newClock()
	s := New(clk.now)
	var reportAt time.Time
	s.Every("actuators", 3*time.Second, func(time.Time) { clk.add(500 * time.Millisecond) })
	s.Every("report", time.Minute, func(now time.Time) { reportAt = now })
	start := clk.t
	s.Tick()
	if want := start.Add(500 * time.Millisecond); !reportAt.Equal(want) {
		t.Fatalf("report started at %v, want %v", reportAt, want)
	}
}

func TestNextDue(t *testing.T) {
	clk := newClock()
	s := New(clk.now)
	s.Every("actuators", 3*time.Second, noop)
	s.Every("report", time.Minute, noop)
	if !s.NextDue().IsZero() {
		t.Fatalf("unrun tasks are due immediately")
	}
	start := clk.t
	s.Tick()
	if got := s.NextDue(); !got.Equal(start.Add(3 * time.Second)) {
		t.Fatalf("next due %v, want %v", got, start.Add(3*time.Second))
	}
	s.Reset()
	if !s.NextDue().IsZero() {
		t.Fatalf("reset tasks are due immediately")
	}
}
