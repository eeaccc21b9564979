// Package node runs the control loop: a fast poll that applies actuator
// commands from the store and a slow report that publishes sensor readings.
package node

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gitlab.com/lologarithm/comfortnode/actuator"
	"gitlab.com/lologarithm/comfortnode/climate"
	"gitlab.com/lologarithm/comfortnode/clock"
	"gitlab.com/lologarithm/comfortnode/schedule"
	"gitlab.com/lologarithm/comfortnode/sensor"
	"gitlab.com/lologarithm/comfortnode/store"
)

// Paths are the store prefixes for commands and readings.
type Paths struct {
	Actuators string `yaml:"actuator_prefix"`
	Sensor    string `yaml:"sensor_prefix"`
}

// Config is everything the loop needs besides its collaborators.
type Config struct {
	Name      string
	Actuators time.Duration // poll period
	Report    time.Duration // report period
	Paths     Paths
	Comfort   climate.Range
}

// Deps are the node's collaborators.
type Deps struct {
	Store     store.Client
	Clock     clock.Source
	Sensor    sensor.Port
	Actuators actuator.Port
}

// Listener is told about every completed poll and report.
// Calls happen on the loop, so implementations must not block.
type Listener interface {
	ActuatorsPolled(c actuator.Command)
	Reported(r Report)
}

// Recorder counts store calls by path and outcome.
type Recorder interface {
	StoreRead(path string, err error)
	StoreWrite(path string, err error)
}

type nopRecorder struct{}

func (nopRecorder) StoreRead(string, error)  {}
func (nopRecorder) StoreWrite(string, error) {}

// Node owns the collaborators and the schedule. It is not safe for concurrent use.
type Node struct {
	cfg       Config
	deps      Deps
	log       *zap.SugaredLogger
	rec       Recorder
	listeners []Listener
	now       func() time.Time
	sched     *schedule.Scheduler
	ctx       context.Context // of the current Run
	scheduled bool
}

func New(cfg Config, deps Deps, log *zap.SugaredLogger) *Node {
	n := &Node{
		cfg:  cfg,
		deps: deps,
		log:  log,
		rec:  nopRecorder{},
		now:  time.Now,
	}
	n.sched = schedule.New(func() time.Time { return n.now() })
	return n
}

// Listen adds a listener.
func (n *Node) Listen(l Listener) {
	n.listeners = append(n.listeners, l)
}

// Record sends store call outcomes to r.
func (n *Node) Record(r Recorder) {
	n.rec = r
}

// Run drives outputs to idle, then polls and reports on schedule until ctx is done.
func (n *Node) Run(ctx context.Context) error {
	actuator.Reset(n.deps.Actuators)

	n.ctx = ctx
	if !n.scheduled {
		n.sched.Every("actuators", n.cfg.Actuators, func(time.Time) { n.PollActuators(n.ctx) })
		n.sched.Every("report", n.cfg.Report, func(now time.Time) { n.Report(n.ctx, now) })
		n.scheduled = true
	}
	n.sched.Reset()

	n.log.Infof("%s: polling actuators every %s, reporting every %s", n.cfg.Name, n.cfg.Actuators, n.cfg.Report)
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			n.log.Infof("%s: stopping", n.cfg.Name)
			return nil
		case <-timer.C:
		}
		n.sched.Tick()
		wait := n.sched.NextDue().Sub(n.now())
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)
	}
}
