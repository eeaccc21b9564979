package sensor

import (
	"math"
	"time"
)

// Port reads the two climate channels of a sensor.
// Either call may return NaN when the sensor could not be read.
type Port interface {
	ReadHumidity() float64
	ReadTemperature() float64
}

// Measurement holds a sensor measurement.
type Measurement struct {
	Temp float64 // C
	Humi float64 // %RH
	Time time.Time
}

// Valid reports whether both channels hold a real reading.
func (m Measurement) Valid() bool {
	return !math.IsNaN(m.Temp) && !math.IsNaN(m.Humi)
}

// Read takes one humidity and one temperature reading from p.
func Read(p Port, now time.Time) Measurement {
	h := p.ReadHumidity()
	t := p.ReadTemperature()
	return Measurement{Temp: t, Humi: h, Time: now}
}

// Fake returns fixed readings. Used when gpio pins can't be opened.
type Fake struct {
	Temp float64
	Humi float64
}

func (f *Fake) ReadHumidity() float64    { return f.Humi }
func (f *Fake) ReadTemperature() float64 { return f.Temp }
