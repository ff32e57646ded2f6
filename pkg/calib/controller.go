// Package calib runs the interactive bandgap calibration session.
//
// The operator watches the true supply voltage on a multimeter while
// the session prints the computed Vcc over the serial link, and nudges
// the bandgap reference with the arrow keys until the two agree. The
// tuned reference can then be persisted so every later boot measures
// Vcc precisely.
package calib

import (
	"fmt"
	"io"
	"time"

	"github.com/itohio/govcc/pkg/bandgap"
	"github.com/itohio/govcc/pkg/keys"
)

const (
	// DefaultDecodeTimeout is the per-iteration key decode timeout; it
	// also sets the loop cadence while idle.
	DefaultDecodeTimeout = 100 * time.Millisecond

	// DefaultDisplayInterval is how often the live Vcc readout is
	// reprinted while tuning.
	DefaultDisplayInterval = time.Second
)

const menuText = "\r\n== Bandgap calibration ==\r\n" +
	"[Space] to enter calibration display.\r\n" +
	"[1] to retrieve saved bandgap value.\r\n" +
	"[2] to save current bandgap value.\r\n" +
	"[Escape]/[q] to exit calibration.\r\n\r\n" +
	"While in calibration display, press:\r\n" +
	"[Space] to return to this menu.\r\n" +
	"[Up/Down arrows]/[k or j] to adjust bandgap voltage while\r\n" +
	"  measuring the supply voltage (Vcc) externally with\r\n" +
	"  a multimeter.\r\n\r\n" +
	"[Space], [1], [2] or [Escape]/[q]?\r\n\r\n"

// KeyReader is the decoder the controller pulls key events from, one
// event per call. Satisfied by *keys.Decoder.
type KeyReader interface {
	Decode(timeout time.Duration) keys.Key
}

type state int

const (
	stateMenu state = iota
	stateTune
)

// Controller is the two-state calibration session. It owns the meter's
// bandgap reference for its lifetime; there is exactly one logical
// thread of control and the key decode is its only suspension point.
type Controller struct {
	keys     KeyReader
	meter    *bandgap.Meter
	out      io.Writer
	timeout  time.Duration
	interval time.Duration

	nowFn func() time.Time
}

// New returns a controller reading keys from kr, driving m, and writing
// operator text to out.
func New(kr KeyReader, m *bandgap.Meter, out io.Writer) *Controller {
	return &Controller{
		keys:     kr,
		meter:    m,
		out:      out,
		timeout:  DefaultDecodeTimeout,
		interval: DefaultDisplayInterval,
		nowFn:    time.Now,
	}
}

// SetTimings overrides the decode timeout and display interval.
// Zero values keep the defaults.
func (c *Controller) SetTimings(decodeTimeout, displayInterval time.Duration) {
	if decodeTimeout > 0 {
		c.timeout = decodeTimeout
	}
	if displayInterval > 0 {
		c.interval = displayInterval
	}
}

// Run drives the session until the operator quits from the menu. The
// loop returning is how a session ends; there is no separate stopped
// state. Quitting is only possible from the menu: Escape while tuning
// returns to the menu instead.
func (c *Controller) Run() {
	st := stateMenu
	next := c.nowFn().Add(c.interval)

	c.print(menuText)
	for {
		key := c.keys.Decode(c.timeout)
		switch {
		case key == keys.NoKey:
			if st == stateTune && !c.nowFn().Before(next) {
				c.printf("Vcc: %dmV, BG ref: %dmV\r\n", c.meter.ReadVcc(), c.meter.Ref())
				next = c.nowFn().Add(c.interval)
			}

		case key == keys.KeySpace:
			// Space toggles between the two states.
			if st == stateTune {
				st = stateMenu
				c.print(menuText)
			} else {
				st = stateTune
			}

		case key == keys.KeyEscape || key == keys.KeyQ:
			if st == stateMenu {
				return
			}
			st = stateMenu
			c.print(menuText)

		case st == stateMenu:
			switch key {
			case keys.Key1:
				if err := c.meter.Load(); err != nil {
					c.print("\r\nNo saved bandgap value found.\r\n")
					continue
				}
				c.print("Retrieved saved bandgap value.\r\n\r\n")
				st = stateTune
			case keys.Key2:
				if err := c.meter.Save(); err != nil {
					c.printf("\r\nFailed to save bandgap value: %v\r\n", err)
					continue
				}
				c.print("\r\nSaved bandgap value.\r\n\r\n")
				st = stateTune
			}

		default: // tuning
			switch key {
			case keys.KeyUp, keys.KeyK:
				c.meter.Adjust(1)
				c.print("[up]\r\n")
			case keys.KeyDown, keys.KeyJ:
				c.meter.Adjust(-1)
				c.print("[down]\r\n")
			}
		}
	}
}

func (c *Controller) print(s string) {
	io.WriteString(c.out, s)
}

func (c *Controller) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
