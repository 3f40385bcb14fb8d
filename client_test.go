package ammetest

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/electroqa/ammetest/types"
)

// serveReplies starts a TCP endpoint that reads one command per
// connection and replies with the fixed payload. A nil payload closes
// the connection without replying.
func serveReplies(t *testing.T, payload []byte) string {
	t.Helper()

	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Couldn't start TCP test server with error: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			buf := make([]byte, 1024)
			conn.Read(buf)
			if payload != nil {
				conn.Write(payload)
			}
			conn.Close()
		}
	}()

	return ln.Addr().String()
}

func protocolKind(t *testing.T, err error) types.FaultKind {
	t.Helper()
	var pe *types.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected a *types.ProtocolError, got %T: %v", err, err)
	}
	return pe.Kind
}

func TestClientRequest(t *testing.T) {
	endpt := serveReplies(t, []byte("3.14"))

	value, err := Client{}.Request(endpt, []byte("MEASURE_GREENLEE -get_measurement"))
	if err != nil {
		t.Errorf("Didn't expect an error: %v", err)
	}
	if got, want := value, 3.14; got != want {
		t.Errorf("Expected value=%v, got %v", want, got)
	}
}

func TestClientEmptyResponse(t *testing.T) {
	endpt := serveReplies(t, nil)

	_, err := Client{}.Request(endpt, []byte("MEASURE_GREENLEE -get_measurement"))
	if err == nil {
		t.Fatal("Expected an error for an empty reply")
	}
	if got, want := protocolKind(t, err), types.FaultEmptyResponse; got != want {
		t.Errorf("Expected fault kind %s, got %s", want, got)
	}
}

func TestClientCorruptPayload(t *testing.T) {
	endpt := serveReplies(t, []byte("not-a-number"))

	_, err := Client{}.Request(endpt, []byte("MEASURE_GREENLEE -get_measurement"))
	if err == nil {
		t.Fatal("Expected an error for an unparseable reply")
	}
	if got, want := protocolKind(t, err), types.FaultCorruptData; got != want {
		t.Errorf("Expected fault kind %s, got %s", want, got)
	}
}

func TestClientConnectionRefused(t *testing.T) {
	// Grab a port, then close it so the connection is refused.
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Couldn't start TCP test server with error: %v", err)
	}
	endpt := ln.Addr().String()
	ln.Close()

	_, err = Client{}.Request(endpt, []byte("MEASURE_GREENLEE -get_measurement"))
	if err == nil {
		t.Fatal("Expected an error for a refused connection")
	}
	if got, want := protocolKind(t, err), types.FaultConnectionRefused; got != want {
		t.Errorf("Expected fault kind %s, got %s", want, got)
	}
}

func TestClientReadTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Couldn't start TCP test server with error: %v", err)
	}
	defer ln.Close()

	// Accept but never reply.
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			buf := make([]byte, 1024)
			conn.Read(buf)
			time.Sleep(time.Second)
		}
	}()

	c := Client{Timeout: 50 * time.Millisecond}
	_, err = c.Request(ln.Addr().String(), []byte("MEASURE_GREENLEE -get_measurement"))
	if err == nil {
		t.Fatal("Expected an error for a silent endpoint")
	}
	if got, want := protocolKind(t, err), types.FaultTimeout; got != want {
		t.Errorf("Expected fault kind %s, got %s", want, got)
	}
}
