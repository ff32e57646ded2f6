//go:build tinygo && avr

//go:generate tinygo flash -target=arduino

// Firmware for AVR boards: measures the true supply voltage via the
// internal bandgap reference and exposes the interactive calibration
// console on UART0. After the operator quits the console, the board
// keeps printing precise Vcc readings once a second.
package main

import (
	"machine"
	"time"

	"github.com/itohio/govcc/pkg/bandgap"
	"github.com/itohio/govcc/pkg/calib"
	"github.com/itohio/govcc/pkg/keys"
)

// uartSource exposes the UART receive buffer as a key decoder source.
type uartSource struct {
	uart *machine.UART
}

func (s uartSource) Available() bool {
	return s.uart.Buffered() > 0
}

func (s uartSource) ReadByte() (byte, error) {
	return s.uart.ReadByte()
}

func main() {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE})

	// Pick up a previously calibrated reference from EEPROM, falling
	// back to the nominal 1100mV.
	meter := bandgap.New(bandgap.SamplerFunc(sampleBandgap), eepromStore{addr: EEPROM_RECORD_ADDR})

	dec := keys.NewDecoder(uartSource{uart: uart}, keys.DefaultTable())
	ctl := calib.New(dec, meter, uart)

	// Calibration console on boot; returns when the operator quits.
	ctl.Run()

	for {
		print("Vcc: ")
		print(meter.ReadVcc())
		print(" mV, BG ref: ")
		print(meter.Ref())
		print(" mV\r\n")
		time.Sleep(time.Second)
	}
}
