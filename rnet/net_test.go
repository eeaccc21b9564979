package rnet

import (
	"encoding/json"
	"math"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"gitlab.com/lologarithm/comfortnode/climate"
	"gitlab.com/lologarithm/comfortnode/clock"
	"gitlab.com/lologarithm/comfortnode/node"
	"gitlab.com/lologarithm/comfortnode/sensor"
)

func TestBroadcastReport(t *testing.T) {
	rcv, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer rcv.Close()

	b, err := NewBroadcaster(rcv.LocalAddr().String(), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("broadcaster: %v", err)
	}
	defer b.Close()

	b.Reported(node.Report{
		Name:    "sala",
		Stamp:   clock.Unsynchronized(),
		Sample:  sensor.Measurement{Temp: math.NaN(), Humi: 52},
		Comfort: climate.Bad,
	})

	buf := make([]byte, 1024)
	rcv.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := rcv.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m Msg
	if err := json.Unmarshal(buf[:n], &m); err != nil {
		t.Fatalf("decode %q: %v", buf[:n], err)
	}
	if m.Name != "sala" || m.Key != clock.Unsynced || m.Synced {
		t.Fatalf("unexpected header %#v", m)
	}
	if m.Temp != nil || m.Humidity == nil || *m.Humidity != 52 || m.Comfort != "bad" {
		t.Fatalf("unexpected readings %#v", m)
	}
}

func TestNewBroadcasterBadAddr(t *testing.T) {
	if _, err := NewBroadcaster("not an address", zap.NewNop().Sugar()); err == nil {
		t.Fatalf("expected error")
	}
}
