package main

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"gitlab.com/lologarithm/comfortnode/actuator"
	"gitlab.com/lologarithm/comfortnode/clock"
	"gitlab.com/lologarithm/comfortnode/config"
	"gitlab.com/lologarithm/comfortnode/node"
	"gitlab.com/lologarithm/comfortnode/sensor"
)

func TestSeedCommandsMatchPoller(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Actuators = "casa/actuador"
	out := actuator.NewFake(nil)
	n := node.New(cfg.Node(), node.Deps{
		Store:     seedCommands(cfg.Store.Actuators),
		Clock:     clock.Fixed{},
		Sensor:    &sensor.Fake{},
		Actuators: out,
	}, zap.NewNop().Sugar())

	cmd := n.PollActuators(context.Background())

	if cmd.Enabled == nil || !*cmd.Enabled {
		t.Fatalf("seeded power command was not read")
	}
	for o, want := range map[actuator.Output]int{actuator.Red: 128, actuator.Green: 0, actuator.Blue: 255} {
		if got, ok := out.Level(o); !ok || got != want {
			t.Fatalf("%s: expected %d, got %d (%v)", o, want, got, ok)
		}
	}
}
