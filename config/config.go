// Package config loads the node's yaml configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gitlab.com/lologarithm/comfortnode/actuator"
	"gitlab.com/lologarithm/comfortnode/alert"
	"gitlab.com/lologarithm/comfortnode/climate"
	"gitlab.com/lologarithm/comfortnode/clock"
	"gitlab.com/lologarithm/comfortnode/node"
	"gitlab.com/lologarithm/comfortnode/rnet"
	"gitlab.com/lologarithm/comfortnode/store"
)

type Config struct {
	Name      string              `yaml:"name"`
	Schedule  ScheduleConfig      `yaml:"schedule"`
	Store     StoreConfig         `yaml:"store"`
	Clock     clock.NTPConfig     `yaml:"clock"`
	Pins      PinConfig           `yaml:"pins"`
	Comfort   climate.Range       `yaml:"comfort"`
	HTTP      HTTPConfig          `yaml:"http"`
	Broadcast BroadcastConfig     `yaml:"broadcast"`
	Mailgun   alert.MailgunConfig `yaml:"mailgun"`
}

type ScheduleConfig struct {
	Actuators time.Duration `yaml:"actuators"`
	Report    time.Duration `yaml:"report"`
}

type StoreConfig struct {
	store.FirebaseConfig `yaml:",inline"`
	node.Paths           `yaml:",inline"`
}

type PinConfig struct {
	actuator.Pins `yaml:",inline"`
	DHT           int `yaml:"dht"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables the status server
}

type BroadcastConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// DefaultPins is the stock wiring. Pins left out of a config keep these.
var DefaultPins = PinConfig{
	Pins: actuator.Pins{Power: 17, Red: 12, Green: 13, Blue: 18, Indicator: 23, PWMFreq: 1000},
	DHT:  22,
}

// Load reads, defaults and validates the file at path.
func Load(path string) (*Config, error) {
	return load(path, true)
}

// LoadOffline is Load for runs without a database; store.database_url may be empty.
func LoadOffline(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, needStore bool) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Keys missing from the file leave these values in place.
	cfg := Config{Pins: DefaultPins}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if needStore && cfg.Store.DatabaseURL == "" {
		return nil, fmt.Errorf("store.database_url is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default is the configuration used when no file is given. It has no database.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		if host, err := os.Hostname(); err == nil {
			c.Name = host
		} else {
			c.Name = "comfortnode"
		}
	}
	if c.Schedule.Actuators == 0 {
		c.Schedule.Actuators = 3 * time.Second
	}
	if c.Schedule.Report == 0 {
		c.Schedule.Report = 60 * time.Second
	}
	if c.Store.Actuators == "" {
		c.Store.Actuators = "actuador"
	}
	if c.Store.Sensor == "" {
		c.Store.Sensor = "sensor"
	}
	if c.Store.Timeout == 0 {
		c.Store.Timeout = 10 * time.Second
	}
	if c.Clock.Server == "" {
		c.Clock.Server = "pool.ntp.org"
	}
	if c.Clock.Location == "" {
		c.Clock.Location = "Local"
	}
	if c.Clock.Interval == 0 {
		c.Clock.Interval = time.Hour
	}
	if c.Clock.Retry == 0 {
		c.Clock.Retry = 15 * time.Second
	}
	if c.Clock.Timeout == 0 {
		c.Clock.Timeout = 5 * time.Second
	}
	if c.Pins == (PinConfig{}) {
		c.Pins = DefaultPins
	}
	if c.Pins.PWMFreq == 0 {
		c.Pins.PWMFreq = 1000
	}
	if c.Comfort == (climate.Range{}) {
		c.Comfort = climate.Default
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Broadcast.Addr == "" {
		c.Broadcast.Addr = rnet.DefaultGroup
	}
}

func (c *Config) validate() error {
	if c.Schedule.Actuators < 0 || c.Schedule.Report < 0 {
		return fmt.Errorf("schedule periods must be positive")
	}
	if c.Comfort.TempLow > c.Comfort.TempHigh {
		return fmt.Errorf("comfort.temp_low %v is above temp_high %v", c.Comfort.TempLow, c.Comfort.TempHigh)
	}
	if c.Comfort.HumiLow > c.Comfort.HumiHigh {
		return fmt.Errorf("comfort.humi_low %v is above humi_high %v", c.Comfort.HumiLow, c.Comfort.HumiHigh)
	}
	pins := []struct {
		name string
		pin  int
	}{
		{"power", c.Pins.Power}, {"red", c.Pins.Red}, {"green", c.Pins.Green},
		{"blue", c.Pins.Blue}, {"indicator", c.Pins.Indicator}, {"dht", c.Pins.DHT},
	}
	used := map[int]string{}
	for _, p := range pins {
		if p.pin < 0 || p.pin > 53 {
			return fmt.Errorf("pins.%s %d is not a BCM gpio", p.name, p.pin)
		}
		if other, ok := used[p.pin]; ok {
			return fmt.Errorf("pins.%s and pins.%s share gpio %d", other, p.name, p.pin)
		}
		used[p.pin] = p.name
	}
	return nil
}

// Node is the control loop's share of the configuration.
func (c *Config) Node() node.Config {
	return node.Config{
		Name:      c.Name,
		Actuators: c.Schedule.Actuators,
		Report:    c.Schedule.Report,
		Paths:     c.Store.Paths,
		Comfort:   c.Comfort,
	}
}
