//go:build tinygo && avr

package main

import (
	"device/avr"
	"time"
)

// sampleBandgap reads one ADC conversion of the internal 1.1V bandgap
// reference measured against AVcc. Selecting the bandgap channel
// disturbs Vref, so the mux is given a couple of milliseconds to
// settle before the conversion starts. ADCL must be read before ADCH;
// the low read locks the pair until the high read releases it.
func sampleBandgap() uint32 {
	avr.ADMUX.Set(avr.ADMUX_REFS0 | avr.ADMUX_MUX3 | avr.ADMUX_MUX2 | avr.ADMUX_MUX1)

	time.Sleep(2 * time.Millisecond)

	avr.ADCSRA.SetBits(avr.ADCSRA_ADSC)
	for avr.ADCSRA.HasBits(avr.ADCSRA_ADSC) {
	}

	low := uint32(avr.ADCL.Get())
	high := uint32(avr.ADCH.Get())
	return high<<8 | low
}
