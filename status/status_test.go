package status

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gitlab.com/lologarithm/comfortnode/actuator"
	"gitlab.com/lologarithm/comfortnode/climate"
	"gitlab.com/lologarithm/comfortnode/clock"
	"gitlab.com/lologarithm/comfortnode/node"
	"gitlab.com/lologarithm/comfortnode/sensor"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	h := NewHub("Living Room", zap.NewNop().Sugar())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/stream", h.ServeStream)
	mux.HandleFunc("/", h.ServePage)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return h, srv
}

func TestStreamSendsLatestThenUpdates(t *testing.T) {
	h, srv := newTestHub(t)

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/stream", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	c.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first Status
	if err := c.ReadJSON(&first); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if first.Name != "Living Room" || first.Temp != nil {
		t.Fatalf("unexpected initial status %#v", first)
	}

	h.Reported(node.Report{
		Stamp:   clock.Stamp{Key: "1709993107", ISO: "2024-03-09T14:05:07"},
		Synced:  true,
		Sample:  sensor.Measurement{Temp: 23, Humi: 45},
		Comfort: climate.Good,
	})

	var got Status
	if err := c.ReadJSON(&got); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if got.Temp == nil || *got.Temp != 23 || got.Comfort != "good" || got.Time != "2024-03-09T14:05:07" {
		t.Fatalf("unexpected update %#v", got)
	}
}

func TestInvalidReadingIsNull(t *testing.T) {
	h := NewHub("x", zap.NewNop().Sugar())
	h.Reported(node.Report{Sample: sensor.Measurement{Temp: math.NaN(), Humi: 50}})
	s := h.Latest()
	if s.Temp != nil {
		t.Fatalf("NaN temperature should be nil, got %v", *s.Temp)
	}
	if s.Humidity == nil || *s.Humidity != 50 {
		t.Fatalf("expected humidity 50")
	}
}

func TestActuatorsPolledKeepsUnreadChannels(t *testing.T) {
	h := NewHub("x", zap.NewNop().Sugar())
	on, red, green := true, 128, 10
	h.ActuatorsPolled(actuator.Command{Enabled: &on, Red: &red, Green: &green})
	red2 := 400
	h.ActuatorsPolled(actuator.Command{Red: &red2})

	s := h.Latest()
	if s.Red == nil || *s.Red != 255 {
		t.Fatalf("expected clamped red 255")
	}
	if s.Green == nil || *s.Green != 10 {
		t.Fatalf("green should keep its last value")
	}
	if s.Power == nil || !*s.Power {
		t.Fatalf("power should keep its last value")
	}
}

func TestPage(t *testing.T) {
	h, srv := newTestHub(t)
	h.Reported(node.Report{Sample: sensor.Measurement{Temp: 21.5, Humi: 41}, Comfort: climate.Good})

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatalf("read: %v", err)
	}
	body := buf.String()
	for _, want := range []string{"Living Room", "21.5C / 70F", "41.0%", "good"} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q:\n%s", want, body)
		}
	}
}
