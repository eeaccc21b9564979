// Package rnet broadcasts node reports on the local network.
package rnet

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"strings"

	"go.uber.org/zap"

	"gitlab.com/lologarithm/comfortnode/actuator"
	"gitlab.com/lologarithm/comfortnode/node"
)

// DefaultGroup is the multicast address reports go to when none is configured.
const DefaultGroup = "225.1.2.3:8765"

// Msg is what is sent over the broadcast network.
type Msg struct {
	Name     string   `json:"name"`
	Key      string   `json:"key"`
	Time     string   `json:"time"`
	Synced   bool     `json:"synced"`
	Temp     *float64 `json:"temp"`
	Humidity *float64 `json:"humidity"`
	Comfort  string   `json:"comfort"`
}

// NewMsg converts a report into its wire form. Invalid readings become null.
func NewMsg(r node.Report) Msg {
	return Msg{
		Name:     r.Name,
		Key:      r.Stamp.Key,
		Time:     r.Stamp.ISO,
		Synced:   r.Synced,
		Temp:     finite(r.Sample.Temp),
		Humidity: finite(r.Sample.Humi),
		Comfort:  r.Comfort.String(),
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Broadcaster sends one datagram per report to a UDP (usually multicast) address.
type Broadcaster struct {
	conn *net.UDPConn
	log  *zap.SugaredLogger
}

func NewBroadcaster(addr string, log *zap.SugaredLogger) (*Broadcaster, error) {
	dst, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolving broadcast addr %q: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, dst)
	if err != nil {
		return nil, fmt.Errorf("dialing broadcast addr %q: %w", addr, err)
	}
	log.Infof("Broadcasting reports from %s to %s", conn.LocalAddr(), dst)
	return &Broadcaster{conn: conn, log: log}, nil
}

// Reported sends r. Failures are logged and otherwise ignored.
func (b *Broadcaster) Reported(r node.Report) {
	data, err := json.Marshal(NewMsg(r))
	if err != nil {
		b.log.Errorf("[Error] Failed to encode broadcast: %s", err)
		return
	}
	if _, err := b.conn.Write(data); err != nil {
		b.log.Warnf("Failed to broadcast report: %s", err)
	}
}

// ActuatorsPolled is a no-op; only reports are broadcast.
func (b *Broadcaster) ActuatorsPolled(actuator.Command) {}

func (b *Broadcaster) Close() error {
	return b.conn.Close()
}

// MyIPs lists the IPv4 addresses of the interfaces that are up, multicast
// capable and backed by real hardware.
func MyIPs() ([]string, error) {
	itfs, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("get network interfaces: %w", err)
	}

	var mine []string
	for _, itf := range itfs {
		switch {
		case itf.Flags&net.FlagUp != net.FlagUp:
			continue // skip down interfaces
		case itf.Flags&net.FlagLoopback == net.FlagLoopback:
			continue
		case itf.HardwareAddr == nil:
			continue // not real network hardware
		case strings.Contains(itf.Name, "docker"):
			continue
		case itf.Flags&net.FlagMulticast != net.FlagMulticast:
			continue
		}

		addrs, err := itf.Addrs()
		if err != nil {
			return nil, fmt.Errorf("get addrs of %s: %w", itf.Name, err)
		}
		for _, addr := range addrs {
			ip, _, err := net.ParseCIDR(addr.String())
			if err != nil {
				continue
			}
			if ipv4 := ip.To4(); ipv4 != nil {
				mine = append(mine, ipv4.String())
			}
		}
	}
	return mine, nil
}
