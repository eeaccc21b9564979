// Package status serves the node's latest state as a web page and a websocket stream.
package status

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gitlab.com/lologarithm/comfortnode/actuator"
	"gitlab.com/lologarithm/comfortnode/node"
)

// Status is what clients see. Nil readings were invalid.
type Status struct {
	Name     string   `json:"name"`
	Temp     *float64 `json:"temp"`
	Humidity *float64 `json:"humidity"`
	Comfort  string   `json:"comfort"`
	Time     string   `json:"time"`
	Synced   bool     `json:"synced"`
	Failed   []string `json:"failed,omitempty"`
	Power    *bool    `json:"power,omitempty"`
	Red      *int     `json:"red,omitempty"`
	Green    *int     `json:"green,omitempty"`
	Blue     *int     `json:"blue,omitempty"`
}

var upgrader = websocket.Upgrader{} // use default options

// Hub keeps the latest status and pushes every change to connected websockets.
type Hub struct {
	log *zap.SugaredLogger

	datalock *sync.Mutex
	latest   Status

	clientslock   *sync.Mutex
	clientStreams []*websocket.Conn

	updates chan []byte
}

func NewHub(name string, log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:         log,
		datalock:    &sync.Mutex{},
		latest:      Status{Name: name},
		clientslock: &sync.Mutex{},
		updates:     make(chan []byte, 10),
	}
}

// Run pushes updates to every client until ctx is done. Dead sockets are dropped.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.clientslock.Lock()
			for _, cs := range h.clientStreams {
				cs.Close()
			}
			h.clientStreams = nil
			h.clientslock.Unlock()
			return
		case v := <-h.updates:
			deadstreams := []int{}
			h.clientslock.Lock()
			for i, cs := range h.clientStreams {
				if err := cs.WriteMessage(websocket.TextMessage, v); err != nil {
					deadstreams = append(deadstreams, i)
				}
			}
			for i := len(deadstreams) - 1; i > -1; i-- {
				idx := deadstreams[i]
				h.clientStreams[idx].Close()
				h.clientStreams = append(h.clientStreams[:idx], h.clientStreams[idx+1:]...)
			}
			h.clientslock.Unlock()
		}
	}
}

// Latest returns a copy of the current status.
func (h *Hub) Latest() Status {
	h.datalock.Lock()
	defer h.datalock.Unlock()
	return h.latest
}

func (h *Hub) ActuatorsPolled(c actuator.Command) {
	h.datalock.Lock()
	if c.Enabled != nil {
		h.latest.Power = c.Enabled
	}
	for _, o := range []struct {
		out actuator.Output
		dst **int
	}{{actuator.Red, &h.latest.Red}, {actuator.Green, &h.latest.Green}, {actuator.Blue, &h.latest.Blue}} {
		if lvl, ok := c.Level(o.out); ok {
			*o.dst = &lvl
		}
	}
	h.datalock.Unlock()
	h.push()
}

func (h *Hub) Reported(r node.Report) {
	h.datalock.Lock()
	h.latest.Temp = reading(r.Sample.Temp)
	h.latest.Humidity = reading(r.Sample.Humi)
	h.latest.Comfort = r.Comfort.String()
	h.latest.Time = r.Stamp.ISO
	h.latest.Synced = r.Synced
	h.latest.Failed = r.Failed
	h.datalock.Unlock()
	h.push()
}

func reading(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// push never blocks the control loop; a full queue drops the update.
func (h *Hub) push() {
	d, err := json.Marshal(h.Latest())
	if err != nil {
		h.log.Errorf("[Error] Failed to marshal status: %s", err)
		return
	}
	select {
	case h.updates <- d:
	default:
		h.log.Debugf("status update dropped, queue full")
	}
}

// ServeStream upgrades to a websocket, sends the latest status and keeps the client for updates.
func (h *Hub) ServeStream(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("upgrade failure: %s", err)
		return
	}
	h.clientslock.Lock()
	if err := c.WriteJSON(h.Latest()); err != nil {
		h.clientslock.Unlock()
		c.Close()
		return
	}
	h.clientStreams = append(h.clientStreams, c)
	h.clientslock.Unlock()

	// Clients don't send anything; reading notices when they go away.
	go func() {
		for {
			if _, _, err := c.NextReader(); err != nil {
				h.log.Debugf("Disconnecting client: %s", err)
				c.Close()
				return
			}
		}
	}()
}

// ServePage renders the status page.
func (h *Hub) ServePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, newPageData(h.Latest())); err != nil {
		h.log.Errorf("[Error] Failed to render page: %s", err)
	}
}
