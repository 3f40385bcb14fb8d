package ammetest

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"time"
)

// The three emulated device families.
const (
	KindGreenlee = "greenlee"
	KindEntes    = "entes"
	KindCircutor = "circutor"
)

// DeviceKinds lists the emulated device families in a fixed order.
var DeviceKinds = []string{KindGreenlee, KindEntes, KindCircutor}

// Device is one emulated ammeter: it recognizes a fixed command and
// fabricates a plausible current reading.
type Device interface {
	Kind() string
	Command() []byte
	Measure() float64
}

// NewDevice returns the emulated device for kind, using rng for its
// fabricated readings. A nil rng gets a time-seeded source.
func NewDevice(kind string, rng *rand.Rand) (Device, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	switch kind {
	case KindGreenlee:
		return &Greenlee{rng: rng}, nil
	case KindEntes:
		return &Entes{rng: rng}, nil
	case KindCircutor:
		return &Circutor{rng: rng}, nil
	}
	return nil, fmt.Errorf("unknown device kind: %q", kind)
}

// Greenlee derives current from a random voltage over a random
// resistance.
type Greenlee struct {
	rng *rand.Rand
}

func (d *Greenlee) Kind() string    { return KindGreenlee }
func (d *Greenlee) Command() []byte { return []byte("MEASURE_GREENLEE -get_measurement") }

func (d *Greenlee) Measure() float64 {
	voltage := randFloat(d.rng, 1.0, 10.0)
	resistance := randFloat(d.rng, 0.1, 100.0)
	return voltage / resistance
}

// Entes derives current from a random magnetic field strength and a
// calibration factor.
type Entes struct {
	rng *rand.Rand
}

func (d *Entes) Kind() string    { return KindEntes }
func (d *Entes) Command() []byte { return []byte("MEASURE_ENTES -get_data") }

func (d *Entes) Measure() float64 {
	field := randFloat(d.rng, 0.01, 0.1)
	calibration := randFloat(d.rng, 500, 2000)
	return field * calibration
}

// Circutor integrates ten random voltage samples over a random time
// step.
type Circutor struct {
	rng *rand.Rand
}

func (d *Circutor) Kind() string    { return KindCircutor }
func (d *Circutor) Command() []byte { return []byte("MEASURE_CIRCUTOR -get_measurement -current") }

func (d *Circutor) Measure() float64 {
	step := randFloat(d.rng, 0.001, 0.01)
	var current float64
	for i := 0; i < 10; i++ {
		current += randFloat(d.rng, 0.1, 1.0) * step
	}
	return current
}

func randFloat(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// Server exposes one Device over TCP. Each connection carries exactly
// one exchange: the server reads one command, replies with one ASCII
// reading if the command matches, and closes. A wrong command closes
// the connection without a reply.
type Server struct {
	Device Device

	// Addr is the listen address, e.g. "localhost:9001". An empty
	// port picks a free one; use Addr() after Listen for it.
	ListenAddr string

	// BufferSize bounds the command read. Defaults to
	// DefaultBufferSize.
	BufferSize int

	ln net.Listener
}

// Listen binds the server's listener.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.ListenAddr)
	if err != nil {
		return err
	}
	s.ln = ln
	return nil
}

// Addr returns the bound address. Only valid after Listen.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts connections until ctx is canceled, handling one
// client at a time.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	bufSize := s.BufferSize
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	buf := make([]byte, bufSize)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}
	if !bytes.Equal(buf[:n], s.Device.Command()) {
		return
	}

	reading := strconv.FormatFloat(s.Device.Measure(), 'f', -1, 64)
	conn.Write([]byte(reading))
}
