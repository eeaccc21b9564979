package actuator

import (
	"fmt"

	rpio "github.com/stianeikeland/go-rpio/v4"
	"go.uber.org/zap"
)

// Pins are BCM pin numbers for each output.
type Pins struct {
	Power     int `yaml:"power"`
	Red       int `yaml:"red"`
	Green     int `yaml:"green"`
	Blue      int `yaml:"blue"`
	Indicator int `yaml:"indicator"`
	PWMFreq   int `yaml:"pwm_freq"` // Hz
}

// pwmChannel returns the hardware pwm channel a BCM pin is wired to.
func pwmChannel(pin int) (int, bool) {
	switch pin {
	case 12, 18, 40:
		return 0, true
	case 13, 19, 41, 45:
		return 1, true
	}
	return 0, false
}

type rpin struct {
	pin rpio.Pin
	pwm bool
}

// RPIO drives outputs through raspberry pi gpio registers.
// The SoC only has two pwm channels, so a color output whose pin has no
// free channel is driven on/off (any non-zero level is high).
type RPIO struct {
	pins map[Output]rpin
	log  *zap.SugaredLogger
}

// OpenRPIO opens the gpio memory range and configures every output pin.
func OpenRPIO(p Pins, log *zap.SugaredLogger) (*RPIO, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}
	r := &RPIO{pins: map[Output]rpin{}, log: log}

	for _, o := range []Output{Power, Indicator} {
		pin := rpio.Pin(p.pin(o))
		pin.Output()
		r.pins[o] = rpin{pin: pin}
	}

	claimed := map[int]bool{}
	for _, o := range []Output{Red, Green, Blue} {
		n := p.pin(o)
		pin := rpio.Pin(n)
		ch, ok := pwmChannel(n)
		if !ok || claimed[ch] {
			log.Warnf("%s on pin %d has no free pwm channel, driving on/off", o, n)
			pin.Output()
			r.pins[o] = rpin{pin: pin}
			continue
		}
		claimed[ch] = true
		pin.Mode(rpio.Pwm)
		pin.Freq(p.PWMFreq * MaxLevel)
		pin.DutyCycle(0, MaxLevel)
		r.pins[o] = rpin{pin: pin, pwm: true}
	}
	return r, nil
}

func (p Pins) pin(o Output) int {
	switch o {
	case Power:
		return p.Power
	case Red:
		return p.Red
	case Green:
		return p.Green
	case Blue:
		return p.Blue
	}
	return p.Indicator
}

func (r *RPIO) Digital(o Output, high bool) {
	rp, ok := r.pins[o]
	if !ok {
		return
	}
	if high {
		rp.pin.High()
	} else {
		rp.pin.Low()
	}
}

func (r *RPIO) Analog(o Output, duty int) {
	rp, ok := r.pins[o]
	if !ok {
		return
	}
	duty = ClampLevel(duty)
	if !rp.pwm {
		r.Digital(o, duty > 0)
		return
	}
	rp.pin.DutyCycle(uint32(duty), MaxLevel)
}

// Close returns outputs to idle and releases the gpio memory range.
func (r *RPIO) Close() error {
	Reset(r)
	return rpio.Close()
}
