package metrics

import (
	"errors"
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"gitlab.com/lologarithm/comfortnode/actuator"
	"gitlab.com/lologarithm/comfortnode/climate"
	"gitlab.com/lologarithm/comfortnode/node"
	"gitlab.com/lologarithm/comfortnode/sensor"
)

func TestStoreCounters(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	p.StoreRead("actuador/led", nil)
	p.StoreRead("actuador/led", errors.New("timeout"))
	p.StoreWrite("sensor/1700000000/humedad", nil)
	p.StoreWrite("sensor/1700000060/humedad", nil)

	if got := testutil.ToFloat64(p.reads.WithLabelValues("actuador/led", "failed")); got != 1 {
		t.Fatalf("expected 1 failed read, got %f", got)
	}
	if got := testutil.ToFloat64(p.writes.WithLabelValues("humedad", "ok")); got != 2 {
		t.Fatalf("expected writes folded by field, got %f", got)
	}
}

func TestListenerGauges(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	on, red := true, 300
	p.ActuatorsPolled(actuator.Command{Enabled: &on, Red: &red})
	if got := testutil.ToFloat64(p.levels.WithLabelValues("red")); got != 255 {
		t.Fatalf("expected clamped red level 255, got %f", got)
	}
	if got := testutil.ToFloat64(p.levels.WithLabelValues("power")); got != 1 {
		t.Fatalf("expected power 1, got %f", got)
	}

	p.Reported(node.Report{Sample: sensor.Measurement{Temp: 22.5, Humi: 48}, Comfort: climate.Good, Synced: true})
	if got := testutil.ToFloat64(p.temp); got != 22.5 {
		t.Fatalf("expected temp 22.5, got %f", got)
	}
	if got := testutil.ToFloat64(p.comfort); got != 1 {
		t.Fatalf("expected comfort gauge 1, got %f", got)
	}

	p.Reported(node.Report{Sample: sensor.Measurement{Temp: math.NaN(), Humi: math.NaN()}, Comfort: climate.Bad})
	if got := testutil.ToFloat64(p.temp); got != 22.5 {
		t.Fatalf("invalid reading must not overwrite temp, got %f", got)
	}
	if got := testutil.ToFloat64(p.invalid); got != 1 {
		t.Fatalf("expected invalid counter 1, got %f", got)
	}
	if got := testutil.ToFloat64(p.synced); got != 0 {
		t.Fatalf("expected synced gauge 0, got %f", got)
	}
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProm(reg)
	p.StoreRead("actuador/rgb/blue", nil)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `comfortnode_store_reads_total{path="actuador/rgb/blue",result="ok"} 1`) {
		t.Fatalf("metrics output missing read counter:\n%s", rec.Body.String())
	}
}
