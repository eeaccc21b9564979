package node

import (
	"context"
	"math"
	"time"

	"gitlab.com/lologarithm/comfortnode/actuator"
	"gitlab.com/lologarithm/comfortnode/climate"
	"gitlab.com/lologarithm/comfortnode/clock"
	"gitlab.com/lologarithm/comfortnode/sensor"
	"gitlab.com/lologarithm/comfortnode/store"
)

// Record fields below sensor/<key>/.
const (
	FieldComfort     = "confort"
	FieldTimestamp   = "timestamp"
	FieldHumidity    = "humedad"
	FieldTemperature = "temperatura"
)

// InvalidReading is written in place of a number the sensor failed to read.
const InvalidReading = "NaN"

// Report is the outcome of one reporting cycle.
type Report struct {
	Name    string
	Stamp   clock.Stamp
	Synced  bool
	Sample  sensor.Measurement
	Comfort climate.Comfort
	Failed  []string // paths whose write failed
}

// Written counts the fields that reached the store.
func (r Report) Written() int {
	return 4 - len(r.Failed)
}

// Report reads the sensor, sets the comfort indicator and writes the four
// record fields. Every write is attempted even when an earlier one failed.
func (n *Node) Report(ctx context.Context, now time.Time) Report {
	stamp, synced := n.deps.Clock.Now()
	if !synced {
		n.log.Warnf("clock not synchronized, recording under %q", stamp.Key)
	}

	m := sensor.Read(n.deps.Sensor, now)
	if !m.Valid() {
		n.log.Warnf("invalid sensor reading: temp=%v humidity=%v", m.Temp, m.Humi)
	}
	c := n.cfg.Comfort.Classify(m.Temp, m.Humi)
	n.deps.Actuators.Digital(actuator.Indicator, c == climate.Good)

	r := Report{Name: n.cfg.Name, Stamp: stamp, Synced: synced, Sample: m, Comfort: c}
	record := store.Join(n.cfg.Paths.Sensor, stamp.Key)

	n.writeString(ctx, &r, store.Join(record, FieldComfort), c.Label())
	n.writeString(ctx, &r, store.Join(record, FieldTimestamp), stamp.ISO)
	n.writeFloat(ctx, &r, store.Join(record, FieldHumidity), m.Humi)
	n.writeFloat(ctx, &r, store.Join(record, FieldTemperature), m.Temp)

	for _, l := range n.listeners {
		l.Reported(r)
	}
	return r
}

func (n *Node) writeString(ctx context.Context, r *Report, path, v string) {
	n.wrote(r, path, v, n.deps.Store.SetString(ctx, path, v))
}

func (n *Node) writeFloat(ctx context.Context, r *Report, path string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		n.writeString(ctx, r, path, InvalidReading)
		return
	}
	n.wrote(r, path, v, n.deps.Store.SetFloat(ctx, path, v))
}

func (n *Node) wrote(r *Report, path string, v any, err error) {
	n.rec.StoreWrite(path, err)
	if err != nil {
		r.Failed = append(r.Failed, path)
		n.log.Errorf("%s write FAILED reason: %v", path, err)
		return
	}
	n.log.Infof("%s write OK value: %v", path, v)
}
