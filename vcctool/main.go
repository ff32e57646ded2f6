// Command vcctool runs an interactive bandgap calibration session
// against a simulated board, either on the local terminal or served
// over a serial link.
//
// In -sim mode the local terminal is switched to raw mode so single
// keystrokes (including arrow escape sequences) reach the decoder the
// same way they would reach firmware over a UART. Without -sim the
// session is served over the configured serial port, the way a bench
// rig exposes its calibration console on a tty.
package main

import (
	"flag"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/itohio/govcc/pkg/bandgap"
	"github.com/itohio/govcc/pkg/calib"
	"github.com/itohio/govcc/pkg/config"
	"github.com/itohio/govcc/pkg/keys"
	"github.com/itohio/govcc/pkg/serialio"
	"github.com/itohio/govcc/pkg/store"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		simFlag    = flag.Bool("sim", false, "Run on the local terminal against a simulated board")
		storeFlag  = flag.String("store", "", "Calibration record file override")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *storeFlag != "" {
		cfg.Calibration.StorePath = *storeFlag
	}

	sampler := bandgap.NewSimSampler(cfg.Sim.SupplyMv, cfg.Sim.BandgapMv, float32(cfg.Sim.Noise))
	meter := bandgap.NewWithRef(sampler, store.NewFileStore(cfg.Calibration.StorePath), cfg.Calibration.NominalRefMv)
	if err := meter.Load(); err == nil {
		log.Printf("Loaded calibrated bandgap reference: %dmV", meter.Ref())
	}

	table := keys.DefaultTable()
	if err := table.Validate(); err != nil {
		log.Fatalf("Invalid key table: %v", err)
	}

	if *simFlag {
		runLocal(cfg, meter, table)
		return
	}
	runSerial(cfg, meter, table)
}

// runLocal runs the session on the local terminal in raw mode.
func runLocal(cfg *config.Config, meter *bandgap.Meter, table keys.Table) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatalf("Failed to switch terminal to raw mode: %v", err)
	}
	defer term.Restore(fd, oldState)

	src := serialio.NewStreamSource(os.Stdin)
	defer src.Close()

	ctl := calib.New(keys.NewDecoder(src, table), meter, os.Stdout)
	ctl.SetTimings(cfg.Calibration.DecodeTimeout, cfg.Calibration.DisplayInterval)
	ctl.Run()

	term.Restore(fd, oldState)
	log.Printf("Calibration session ended, bandgap reference: %dmV", meter.Ref())
}

// runSerial serves the session over the configured serial port.
func runSerial(cfg *config.Config, meter *bandgap.Meter, table keys.Table) {
	if cfg.Serial.Port == "" {
		ports, err := serialio.Ports()
		if err != nil {
			log.Fatalf("Failed to list serial ports: %v", err)
		}
		log.Fatalf("No serial port configured; available ports: %v", ports)
	}

	port, err := serialio.Open(cfg.Serial.Port, cfg.Serial.BaudRate)
	if err != nil {
		log.Fatalf("Failed to open serial port: %v", err)
	}
	defer port.Close()

	log.Printf("Serving calibration console on %s at %d baud", cfg.Serial.Port, cfg.Serial.BaudRate)

	ctl := calib.New(keys.NewDecoder(port, table), meter, port)
	ctl.SetTimings(cfg.Calibration.DecodeTimeout, cfg.Calibration.DisplayInterval)
	ctl.Run()

	log.Printf("Calibration session ended, bandgap reference: %dmV", meter.Ref())
}
