//go:build tinygo && avr

package main

import "github.com/itohio/govcc/pkg/store"

const (
	// Serial configuration. Key decoding is a few bytes per keypress
	// and the live display is one short line per second, so any common
	// rate works; 115200 matches the usual terminal default.
	UART_BAUD_RATE = 115200

	// EEPROM layout. The calibration record sits at the very top of
	// EEPROM since utilities that use EEPROM tend to write from the
	// bottom.
	EEPROM_SIZE        = 1024
	EEPROM_RECORD_ADDR = EEPROM_SIZE - store.RecordSize
)
