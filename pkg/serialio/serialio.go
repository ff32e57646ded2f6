// Package serialio adapts byte transports to the key decoder's Source
// contract. The decoder wants non-blocking availability checks over a
// character stream; Go transports hand out blocking io.Readers, so a
// pump goroutine drains the reader into a buffered channel and the
// channel length answers Available.
package serialio

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// DefaultBaudRate is the standard baud rate for the calibration console.
const DefaultBaudRate = 115200

// streamBufferSize bounds how many bytes the pump may run ahead of the
// decoder. Keystrokes are at most a few bytes, so small is plenty.
const streamBufferSize = 64

// StreamSource pumps an io.Reader into a buffered channel so that the
// key decoder can poll for pending bytes without blocking.
type StreamSource struct {
	ch   chan byte
	done chan struct{}
}

// NewStreamSource starts the pump over r. The pump goroutine exits when
// r reaches EOF or fails, or when Close is called; a reader blocked in
// Read (such as a raw-mode stdin) keeps its goroutine parked until the
// process ends, which is fine for console use.
func NewStreamSource(r io.Reader) *StreamSource {
	s := &StreamSource{
		ch:   make(chan byte, streamBufferSize),
		done: make(chan struct{}),
	}
	go s.pump(r)
	return s
}

func (s *StreamSource) pump(r io.Reader) {
	buf := make([]byte, streamBufferSize)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			select {
			case s.ch <- b:
			case <-s.done:
				return
			}
		}
		if err != nil {
			close(s.ch)
			return
		}
		select {
		case <-s.done:
			return
		default:
		}
	}
}

// Available reports whether a byte is pending. It never blocks.
func (s *StreamSource) Available() bool {
	return len(s.ch) > 0
}

// ReadByte returns the next pending byte. It returns io.EOF once the
// underlying reader is exhausted or the source is closed.
func (s *StreamSource) ReadByte() (byte, error) {
	select {
	case b, ok := <-s.ch:
		if !ok {
			return 0, io.EOF
		}
		return b, nil
	case <-s.done:
		return 0, io.EOF
	}
}

// Close stops the pump. It does not close the underlying reader.
func (s *StreamSource) Close() error {
	close(s.done)
	return nil
}

// Port is a calibration console served over a serial port: a key
// source for the decoder and the operator-facing output sink.
type Port struct {
	*StreamSource
	port serial.Port
}

// Open opens a serial port in 8N1 at the given baud rate and starts
// the read pump. baud of 0 uses DefaultBaudRate.
func Open(name string, baud int) (*Port, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return &Port{
		StreamSource: NewStreamSource(port),
		port:         port,
	}, nil
}

// Write sends operator text out over the port.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close stops the pump and closes the port, which also unblocks a
// pending port read.
func (p *Port) Close() error {
	if err := p.StreamSource.Close(); err != nil {
		return err
	}
	return p.port.Close()
}

// Ports returns the names of the serial ports present on the host.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}
