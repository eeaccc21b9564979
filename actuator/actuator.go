package actuator

// Output names a physical output on the node.
type Output byte

const (
	Power   Output = iota // on/off LED, wired active low
	Red                   // rgb channels
	Green
	Blue
	Indicator // comfort LED
)

func (o Output) String() string {
	switch o {
	case Power:
		return "power"
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Indicator:
		return "indicator"
	}
	return "unknown"
}

// Port drives the physical outputs.
type Port interface {
	Digital(o Output, high bool)
	Analog(o Output, duty int) // duty in [0, MaxLevel]
}

// MaxLevel is the top of the analog drive range.
const MaxLevel = 255

// ClampLevel limits v to [0, MaxLevel].
func ClampLevel(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxLevel {
		return MaxLevel
	}
	return v
}

// Command is what one poll read from the store.
// A nil field was not read successfully and must leave its output untouched.
type Command struct {
	Enabled *bool
	Red     *int
	Green   *int
	Blue    *int
}

// Level returns the clamped level for a color output, or false if it wasn't read.
func (c Command) Level(o Output) (int, bool) {
	var v *int
	switch o {
	case Red:
		v = c.Red
	case Green:
		v = c.Green
	case Blue:
		v = c.Blue
	}
	if v == nil {
		return 0, false
	}
	return ClampLevel(*v), true
}

// Reset drives every output to its idle state: power off, rgb dark, indicator low.
func Reset(p Port) {
	p.Digital(Power, true)
	p.Analog(Red, 0)
	p.Analog(Green, 0)
	p.Analog(Blue, 0)
	p.Digital(Indicator, false)
}
