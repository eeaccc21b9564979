package metrics

import (
	"math"
	"net/http"
	"path"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.com/lologarithm/comfortnode/actuator"
	"gitlab.com/lologarithm/comfortnode/climate"
	"gitlab.com/lologarithm/comfortnode/node"
)

// Prom exports loop activity as prometheus metrics.
type Prom struct {
	reads   *prometheus.CounterVec
	writes  *prometheus.CounterVec
	levels  *prometheus.GaugeVec
	temp    prometheus.Gauge
	humi    prometheus.Gauge
	comfort prometheus.Gauge
	synced  prometheus.Gauge
	invalid prometheus.Counter
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "comfortnode_store_reads_total",
			Help: "Actuator command reads by path and result.",
		}, []string{"path", "result"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "comfortnode_store_writes_total",
			Help: "Sensor record writes by field and result.",
		}, []string{"field", "result"}),
		levels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "comfortnode_output_level",
			Help: "Last commanded output level (power is 0/1, colors 0-255).",
		}, []string{"output"}),
		temp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "comfortnode_temperature_celsius",
			Help: "Last valid temperature reading.",
		}),
		humi: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "comfortnode_humidity_percent",
			Help: "Last valid relative humidity reading.",
		}),
		comfort: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "comfortnode_comfort_good",
			Help: "1 when the last reading classified good.",
		}),
		synced: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "comfortnode_clock_synced",
			Help: "1 when the last report had a synchronized timestamp.",
		}),
		invalid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "comfortnode_invalid_readings_total",
			Help: "Reports whose sensor reading was not a number.",
		}),
	}
	reg.MustRegister(p.reads, p.writes, p.levels, p.temp, p.humi, p.comfort, p.synced, p.invalid)
	return p
}

// Handler serves g in the prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}

func (p *Prom) StoreRead(path string, err error) {
	p.reads.WithLabelValues(path, result(err)).Inc()
}

// StoreWrite labels by field only; the record key changes every report.
func (p *Prom) StoreWrite(recordPath string, err error) {
	p.writes.WithLabelValues(path.Base(recordPath), result(err)).Inc()
}

func (p *Prom) ActuatorsPolled(c actuator.Command) {
	if c.Enabled != nil {
		v := 0.0
		if *c.Enabled {
			v = 1
		}
		p.levels.WithLabelValues(actuator.Power.String()).Set(v)
	}
	for _, o := range []actuator.Output{actuator.Red, actuator.Green, actuator.Blue} {
		if lvl, ok := c.Level(o); ok {
			p.levels.WithLabelValues(o.String()).Set(float64(lvl))
		}
	}
}

func (p *Prom) Reported(r node.Report) {
	if math.IsNaN(r.Sample.Temp) || math.IsNaN(r.Sample.Humi) {
		p.invalid.Inc()
	} else {
		p.temp.Set(r.Sample.Temp)
		p.humi.Set(r.Sample.Humi)
	}
	p.comfort.Set(boolf(r.Comfort == climate.Good))
	p.synced.Set(boolf(r.Synced))
}

func boolf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
