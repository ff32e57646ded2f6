package bandgap

import "github.com/chewxy/math32"

// SimSampler simulates the bandgap ADC of a virtual MCU running at a
// known supply voltage. It produces the code a real converter would:
// code = bandgap*1024/supply, plus a little deterministic sine noise so
// the live display wiggles like real hardware.
type SimSampler struct {
	SupplyMv  uint16  // true supply voltage of the virtual board
	BandgapMv uint16  // true bandgap voltage of the virtual part
	Noise     float32 // peak noise amplitude in ADC codes

	phase float32
}

var _ Sampler = (*SimSampler)(nil)

// NewSimSampler returns a simulator for a board running at supplyMv
// whose part has a true bandgap of bandgapMv.
func NewSimSampler(supplyMv, bandgapMv uint16, noise float32) *SimSampler {
	if supplyMv == 0 {
		supplyMv = 5000
	}
	if bandgapMv == 0 {
		bandgapMv = NominalRefMv
	}
	return &SimSampler{SupplyMv: supplyMv, BandgapMv: bandgapMv, Noise: noise}
}

// SampleBandgap returns the next simulated ADC code, clamped to the
// 10-bit range.
func (s *SimSampler) SampleBandgap() uint32 {
	code := float32(s.BandgapMv) * adcSteps / float32(s.SupplyMv)

	s.phase += 0.37
	code += (math32.Sin(s.phase) + math32.Cos(s.phase*1.3)) * s.Noise * 0.5

	if code < 0 {
		return 0
	}
	if code > analogMax {
		return analogMax
	}
	return uint32(code + 0.5)
}
