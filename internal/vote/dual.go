package vote

import (
	"time"

	"github.com/sweeney/fbw-supervisor/internal/arinc429"
	"github.com/sweeney/fbw-supervisor/internal/logic"
	"github.com/sweeney/fbw-supervisor/internal/mathx"
)

// BothSources is the Source of a DualSensor result averaged from both sensors.
const BothSources = 2

// SplitPolicy chooses the value used once the two sensors disagree for long enough.
type SplitPolicy int

const (
	// Minimum takes the smaller reading.
	Minimum SplitPolicy = iota
	// Biased takes the reading of Config.PreferredSource.
	Biased
)

// DualConfig parameterizes a DualSensor.
type DualConfig struct {
	// Threshold is the absolute difference above which the sensors disagree.
	Threshold float32
	// Confirm is how long a disagreement must last before Policy applies.
	Confirm         time.Duration
	Policy          SplitPolicy
	PreferredSource int
	// Sentinel is the conservative value substituted when the sensors cannot be used.
	Sentinel float32
	// Incoherent reports a physically impossible reading given the companion word.
	// Nil disables the coherence check.
	Incoherent func(v float32, companion arinc429.Number) bool
	// UseSentinel reports whether a lone valid reading must be replaced by Sentinel.
	UseSentinel func(companion arinc429.Number) bool
}

// RadioAltimeterConfig consolidates the two radio altimeters. Heights are in feet,
// the companion word is computed airspeed in knots.
func RadioAltimeterConfig() DualConfig {
	return DualConfig{
		Threshold: 5,
		Confirm:   time.Second,
		Policy:    Minimum,
		Sentinel:  250,
		Incoherent: func(ft float32, cas arinc429.Number) bool {
			return ft > 50 && cas.IsNormalOperation() && cas.Value() < 40
		},
		UseSentinel: func(cas arinc429.Number) bool {
			return cas.IsNormalOperation() && cas.Value() > 180
		},
	}
}

// DualSensor votes two redundant sensors. Coherence failures are latched per source
// until ClearMemory.
type DualSensor struct {
	cfg        DualConfig
	incoherent [2]*logic.SRFlipFlop
	split      *logic.ConfirmNode
}

func NewDualSensor(cfg DualConfig) *DualSensor {
	return &DualSensor{
		cfg:        cfg,
		incoherent: [2]*logic.SRFlipFlop{logic.NewSRFlipFlop(false), logic.NewSRFlipFlop(false)},
		split:      logic.NewConfirmNode(true, cfg.Confirm),
	}
}

// Update consolidates one frame of sensor data.
func (d *DualSensor) Update(a, b, companion arinc429.Number, dt time.Duration) Consolidated[float32] {
	words := [2]arinc429.Number{a, b}
	var ok [2]bool
	for i, w := range words {
		set := d.cfg.Incoherent != nil && w.IsNormalOperation() && d.cfg.Incoherent(w.Value(), companion)
		rejected := d.incoherent[i].Update(set, false)
		ok[i] = w.IsNormalOperation() && !rejected
	}

	switch {
	case ok[0] && ok[1]:
		va, vb := a.Value(), b.Value()
		if !d.split.Update(mathx.Abs(va-vb) > d.cfg.Threshold, dt) {
			return Consolidated[float32]{Value: (va + vb) / 2, Valid: true, Source: BothSources}
		}
		if d.cfg.Policy == Biased {
			src := d.cfg.PreferredSource
			return Consolidated[float32]{Value: words[src].Value(), Valid: true, Source: src}
		}
		if va <= vb {
			return Consolidated[float32]{Value: va, Valid: true, Source: 0}
		}
		return Consolidated[float32]{Value: vb, Valid: true, Source: 1}

	case ok[0] || ok[1]:
		d.split.Reset()
		src := 0
		if ok[1] {
			src = 1
		}
		if d.cfg.UseSentinel != nil && d.cfg.UseSentinel(companion) {
			return Consolidated[float32]{Value: d.cfg.Sentinel, Valid: true, Source: NoSource}
		}
		return Consolidated[float32]{Value: words[src].Value(), Valid: true, Source: src}

	default:
		d.split.Reset()
		return Consolidated[float32]{Value: d.cfg.Sentinel, Source: NoSource}
	}
}

// Rejected reports whether source i is latched as incoherent.
func (d *DualSensor) Rejected(i int) bool {
	return d.incoherent[i].Output()
}

// ClearMemory drops the coherence latches and the disagreement timer.
func (d *DualSensor) ClearMemory() {
	for _, l := range d.incoherent {
		l.Update(false, true)
	}
	d.split.Reset()
}
