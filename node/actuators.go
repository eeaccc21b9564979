package node

import (
	"context"

	"gitlab.com/lologarithm/comfortnode/actuator"
	"gitlab.com/lologarithm/comfortnode/store"
)

// Command keys below the actuator prefix.
const (
	KeyPower = "led"
	KeyRed   = "rgb/red"
	KeyGreen = "rgb/green"
	KeyBlue  = "rgb/blue"
)

// PollActuators reads each command value and applies it right away.
// A failed read leaves its output as it was and doesn't stop the others.
func (n *Node) PollActuators(ctx context.Context) actuator.Command {
	var cmd actuator.Command

	path := store.Join(n.cfg.Paths.Actuators, KeyPower)
	on, err := n.deps.Store.GetBool(ctx, path)
	if n.read(path, on, err) {
		cmd.Enabled = &on
		n.deps.Actuators.Digital(actuator.Power, !on) // active low
	}

	colors := []struct {
		key string
		out actuator.Output
		dst **int
	}{
		{KeyRed, actuator.Red, &cmd.Red},
		{KeyGreen, actuator.Green, &cmd.Green},
		{KeyBlue, actuator.Blue, &cmd.Blue},
	}
	for _, c := range colors {
		path := store.Join(n.cfg.Paths.Actuators, c.key)
		v, err := n.deps.Store.GetInt(ctx, path)
		if !n.read(path, v, err) {
			continue
		}
		*c.dst = &v
		lvl, _ := cmd.Level(c.out)
		if lvl != v {
			n.log.Warnf("%s: %d out of range, clamped to %d", path, v, lvl)
		}
		n.deps.Actuators.Analog(c.out, lvl)
	}

	for _, l := range n.listeners {
		l.ActuatorsPolled(cmd)
	}
	return cmd
}

func (n *Node) read(path string, v any, err error) bool {
	n.rec.StoreRead(path, err)
	if err != nil {
		n.log.Errorf("%s: FAILED reason: %v", path, err)
		return false
	}
	n.log.Infof("%s: %v", path, v)
	return true
}
