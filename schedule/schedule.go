// Package schedule runs fixed-period tasks from a single loop.
//
// A task is due on its first check and then whenever at least its period has
// passed since it last started. Start times are taken when the task is
// checked, so a late check or a slow run pushes every later run back by the
// same amount: the schedule drifts, it never catches up or runs a task twice
// in one Tick.
package schedule

import "time"

type task struct {
	name   string
	period time.Duration
	run    func(now time.Time)
	last   time.Time
	ran    bool
}

func (t *task) due(now time.Time) bool {
	return !t.ran || now.Sub(t.last) >= t.period
}

func (t *task) next() time.Time {
	if !t.ran {
		return time.Time{}
	}
	return t.last.Add(t.period)
}

// Scheduler holds tasks in the order they were added.
type Scheduler struct {
	now   func() time.Time
	tasks []*task
}

// New returns a scheduler reading time from now; nil uses time.Now.
func New(now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{now: now}
}

// Every adds a task. Tasks due in the same Tick run in the order added.
func (s *Scheduler) Every(name string, period time.Duration, fn func(now time.Time)) {
	s.tasks = append(s.tasks, &task{name: name, period: period, run: fn})
}

// Tick runs every due task once and returns their names.
// Each task is checked against the clock as it is reached, after earlier tasks have run.
func (s *Scheduler) Tick() []string {
	var ran []string
	for _, t := range s.tasks {
		now := s.now()
		if !t.due(now) {
			continue
		}
		t.last = now
		t.ran = true
		t.run(now)
		ran = append(ran, t.name)
	}
	return ran
}

// NextDue is the earliest time any task becomes due. Zero means a task has never run.
func (s *Scheduler) NextDue() time.Time {
	var next time.Time
	for i, t := range s.tasks {
		n := t.next()
		if n.IsZero() {
			return n
		}
		if i == 0 || n.Before(next) {
			next = n
		}
	}
	return next
}

// Reset forgets every last-run time so all tasks are due on the next Tick.
func (s *Scheduler) Reset() {
	for _, t := range s.tasks {
		t.ran = false
		t.last = time.Time{}
	}
}
