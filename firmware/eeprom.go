//go:build tinygo && avr

package main

import (
	"device/avr"

	"github.com/itohio/govcc/pkg/store"
)

// eepromStore persists the calibration record in on-chip EEPROM at a
// fixed address near the top, away from the low addresses most other
// sketches use.
type eepromStore struct {
	addr uint16
}

var _ store.Store = eepromStore{}

func (e eepromStore) Load() (store.Record, error) {
	var buf [store.RecordSize]byte
	for i := range buf {
		buf[i] = eepromRead(e.addr + uint16(i))
	}
	var rec store.Record
	if err := rec.UnmarshalBinary(buf[:]); err != nil {
		return store.Record{}, err
	}
	return rec, nil
}

func (e eepromStore) Save(rec store.Record) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return err
	}
	for i, b := range data {
		eepromWrite(e.addr+uint16(i), b)
	}
	return nil
}

func eepromRead(addr uint16) byte {
	for avr.EECR.HasBits(avr.EECR_EEPE) {
	}
	avr.EEARH.Set(uint8(addr >> 8))
	avr.EEARL.Set(uint8(addr))
	avr.EECR.SetBits(avr.EECR_EERE)
	return avr.EEDR.Get()
}

func eepromWrite(addr uint16, b byte) {
	for avr.EECR.HasBits(avr.EECR_EEPE) {
	}
	avr.EEARH.Set(uint8(addr >> 8))
	avr.EEARL.Set(uint8(addr))
	avr.EEDR.Set(b)
	// EEPE must follow EEMPE within four cycles.
	avr.EECR.SetBits(avr.EECR_EEMPE)
	avr.EECR.SetBits(avr.EECR_EEPE)
}
