// Package bandgap computes the true supply voltage (Vcc) from ADC
// readings of the MCU's internal bandgap reference.
//
// The ADC equation ADC = Vin*1024/Vref, with Vref wired to Vcc and Vin
// to the internal reference, rearranges to Vcc = ref*1024/ADC. The
// nominal reference is 1.1V but the real value varies per part between
// roughly 1.0V and 1.2V, which is why the reference is calibrated once
// per device and persisted.
package bandgap

import (
	"math"

	"github.com/itohio/govcc/pkg/store"
)

// NominalRefMv is the datasheet bandgap reference voltage used until a
// calibrated value is loaded.
const NominalRefMv = 1100

// adcSteps is the full-scale step count of the 10-bit ADC equation.
const adcSteps = 1024

// analogMax is the highest 10-bit analog input code.
const analogMax = 1023

// Sampler reads one raw ADC code of the bandgap reference measured
// against Vcc. The call blocks for the hardware settling and conversion
// time. Codes outside [0,1023] indicate a misconfigured ADC and are not
// validated here.
type Sampler interface {
	SampleBandgap() uint32
}

// SamplerFunc adapts a plain function to the Sampler interface.
type SamplerFunc func() uint32

// SampleBandgap calls f.
func (f SamplerFunc) SampleBandgap() uint32 {
	return f()
}

// SupplyMillivolts converts a raw bandgap ADC code to the supply
// voltage in millivolts: mv = refMv*1024/raw, integer truncated.
// A zero code would divide by zero; it reads as a rail-high 65535
// instead, so a dead bandgap channel shows up as an absurd Vcc rather
// than a crash. Results beyond uint16 saturate the same way.
func SupplyMillivolts(refMv uint16, raw uint32) uint16 {
	if raw == 0 {
		return math.MaxUint16
	}
	mv := uint32(refMv) * adcSteps / raw
	if mv > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(mv)
}

// Meter is the measurement service. It owns the bandgap reference value
// for the process; the calibration controller adjusts it through this
// type and nothing else mutates it.
type Meter struct {
	sampler Sampler
	store   store.Store
	refMv   uint16
}

// New returns a meter using the nominal reference, replaced by a
// previously persisted value if the store holds a valid record. A
// missing or invalid record is not an error here; calibration simply
// starts from nominal.
func New(sampler Sampler, st store.Store) *Meter {
	m := &Meter{sampler: sampler, store: st, refMv: NominalRefMv}
	if st != nil {
		_ = m.Load()
	}
	return m
}

// NewWithRef returns a meter pinned to a known reference voltage,
// skipping the store lookup.
func NewWithRef(sampler Sampler, st store.Store, refMv uint16) *Meter {
	return &Meter{sampler: sampler, store: st, refMv: refMv}
}

// Ref returns the current bandgap reference in millivolts.
func (m *Meter) Ref() uint16 {
	return m.refMv
}

// SetRef sets the bandgap reference to a known value in millivolts.
func (m *Meter) SetRef(mv uint16) {
	m.refMv = mv
}

// Adjust moves the reference by delta millivolts, clamped to the uint16
// domain, and returns the new value.
func (m *Meter) Adjust(delta int) uint16 {
	v := int(m.refMv) + delta
	switch {
	case v < 0:
		v = 0
	case v > math.MaxUint16:
		v = math.MaxUint16
	}
	m.refMv = uint16(v)
	return m.refMv
}

// ReadVcc samples the bandgap channel once and returns the computed
// supply voltage in millivolts.
func (m *Meter) ReadVcc() uint16 {
	return SupplyMillivolts(m.refMv, m.sampler.SampleBandgap())
}

// AnalogMillivolts maps a 10-bit analog input code to millivolts using
// a fresh Vcc measurement as the full-scale reference. It is slower
// than a plain analog read because of the extra bandgap sample.
func (m *Meter) AnalogMillivolts(raw uint16) uint16 {
	vcc := m.ReadVcc()
	if raw > analogMax {
		raw = analogMax
	}
	return uint16(uint32(raw) * uint32(vcc) / analogMax)
}

// Load replaces the reference with the persisted record's value. On
// failure the reference is left untouched.
func (m *Meter) Load() error {
	rec, err := m.store.Load()
	if err != nil {
		return err
	}
	m.refMv = rec.RefMv
	return nil
}

// Save persists the current reference.
func (m *Meter) Save() error {
	return m.store.Save(store.NewRecord(m.refMv))
}
