package sensor

import (
	"math"
	"runtime/debug"
	"time"

	rpio "github.com/stianeikeland/go-rpio/v4"
)

const (
	maxWait = int64(time.Millisecond) // longest pulse accepted, in ns

	// MinInterval is the fastest a DHT22 can be sampled.
	MinInterval = 2 * time.Second

	attempts = 3
)

// DHT22 reads a DHT22 on a single gpio pin.
// Humidity and temperature arrive in one frame, so the last frame is
// reused for both channels while it is younger than MinInterval.
type DHT22 struct {
	frame func() (float64, float64, bool) // temp, humidity, checksum good
	now   func() time.Time
	sleep func(time.Duration)
	last  Measurement
}

// NewDHT22 expects rpio.Open to have been called.
func NewDHT22(p int) *DHT22 {
	pin := rpio.Pin(p)
	return &DHT22{
		frame: func() (float64, float64, bool) { return readDHT22(pin) },
		now:   time.Now,
		sleep: time.Sleep,
	}
}

func (d *DHT22) ReadHumidity() float64 {
	d.refresh()
	return d.last.Humi
}

func (d *DHT22) ReadTemperature() float64 {
	d.refresh()
	return d.last.Temp
}

func (d *DHT22) refresh() {
	now := d.now()
	if !d.last.Time.IsZero() && now.Sub(d.last.Time) < MinInterval {
		return
	}
	d.last = Measurement{Temp: math.NaN(), Humi: math.NaN(), Time: now}
	for i := 0; i < attempts; i++ {
		if i > 0 {
			d.sleep(MinInterval) // sensor needs a rest between requests
		}
		t, h, csg := d.frame()
		if csg {
			d.last = Measurement{Temp: t, Humi: h, Time: d.now()}
			return
		}
	}
}

func readDHT22(pin rpio.Pin) (float64, float64, bool) {
	// early allocations before time critical code
	pulseLen := make([]int64, 82)

	debug.SetGCPercent(-1)
	defer debug.SetGCPercent(100)

	pin.Mode(rpio.Output)
	pin.High()
	time.Sleep(50 * time.Millisecond)
	pin.Low()

	// spinlock for milliseconds while pin is low.
	// this signals the request for reading
	s := time.Now().UnixNano()
	to := int64(time.Millisecond * 20)
	for time.Now().UnixNano()-s < to {
	}
	pin.Mode(rpio.Input)
	pin.PullUp()
	defer pin.PullOff()

	// now we wait for DHT to pull low
	s = time.Now().UnixNano()
	firstWaitMax := int64(time.Millisecond * 5)
	for pin.Read() == rpio.High {
		if time.Now().UnixNano()-s > firstWaitMax {
			return math.NaN(), math.NaN(), false
		}
	}

	// DHT pulls low for 80us and then 80us to signal its starting
	// After that we read 40 low and 40 high pulses.
	var end int64
READER:
	for i := 0; i < 81; i += 2 {
		s = 0
		end = 0
		for pin.Read() == rpio.Low {
			if end-s > maxWait {
				break READER
			}
			end++
		}
		pulseLen[i] = end - s

		s = 0
		end = 0
		for pin.Read() == rpio.High {
			if end-s > maxWait {
				break READER
			}
			end++
		}
		pulseLen[i+1] = end - s
	}
	return decode(pulseLen)
}

// decode turns 82 pulse lengths (start pair plus 40 low/high pairs) into
// temperature and humidity. A high pulse longer than the average low pulse is a 1 bit.
func decode(pulseLen []int64) (float64, float64, bool) {
	var threshold int64
	for i := 2; i < 82; i += 2 {
		threshold += pulseLen[i]
	}
	threshold /= 40

	bytes := make([]uint8, 5)
	for i := 3; i < 82; i += 2 {
		bi := (i - 3) / 16
		bytes[bi] <<= 1
		if pulseLen[i] > threshold {
			bytes[bi] |= 0x01
		}
	}

	humidity := float64(uint16(bytes[0])<<8|uint16(bytes[1])) / 10.0
	temperature := float64((uint16(bytes[2])&0x7F)<<8|uint16(bytes[3])) / 10.0
	if bytes[2]&0x80 > 0 {
		temperature *= -1
	}
	if !checksum(bytes) {
		return math.NaN(), math.NaN(), false
	}
	return temperature, humidity, true
}

func checksum(bytes []uint8) bool {
	var sum uint8
	for i := 0; i < 4; i++ {
		sum += bytes[i]
	}
	return sum == bytes[4]
}
