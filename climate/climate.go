package climate

// Comfort is the occupant comfort classification of a reading.
type Comfort byte

const (
	Bad Comfort = iota
	Good
)

func (c Comfort) String() string {
	if c == Good {
		return "good"
	}
	return "bad"
}

// Label is the value written to the remote store for this classification.
func (c Comfort) Label() string {
	if c == Good {
		return "bueno"
	}
	return "malo"
}

// Range holds the inclusive comfort bounds.
type Range struct {
	TempLow  float64 `yaml:"temp_low"`  // low temp in C
	TempHigh float64 `yaml:"temp_high"` // high temp in C
	HumiLow  float64 `yaml:"humi_low"`  // low relative humidity in %
	HumiHigh float64 `yaml:"humi_high"` // high relative humidity in %
}

// Default is 21-25C at 40-60%RH.
var Default = Range{
	TempLow:  21,
	TempHigh: 25,
	HumiLow:  40,
	HumiHigh: 60,
}

// Classify returns Good only when both values fall inside the range, bounds included.
// A NaN reading fails every comparison and so always classifies Bad.
func (r Range) Classify(temp, humi float64) Comfort {
	if temp >= r.TempLow && temp <= r.TempHigh && humi >= r.HumiLow && humi <= r.HumiHigh {
		return Good
	}
	return Bad
}

// Classify uses the Default range.
func Classify(temp, humi float64) Comfort {
	return Default.Classify(temp, humi)
}
