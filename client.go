package ammetest

import (
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/electroqa/ammetest/types"
)

const (
	// DefaultTimeout bounds both the connect and the read of one
	// measurement exchange.
	DefaultTimeout = 5 * time.Second

	// DefaultBufferSize is the maximum reply size. The protocol is
	// one read per connection; replies larger than the buffer are
	// not supported.
	DefaultBufferSize = 1024
)

// Client performs one blocking request/response exchange against a
// device endpoint and decodes the reply to a numeric value. It does
// not retry; retries, if any, are the caller's responsibility.
type Client struct {
	// Timeout is the maximum time to wait for the connection to be
	// established and for the reply. Defaults to DefaultTimeout.
	Timeout time.Duration

	// BufferSize is the maximum reply size in bytes. Defaults to
	// DefaultBufferSize.
	BufferSize int
}

// Request opens one connection to endpoint, sends the exact command
// bytes, reads up to one buffer of reply and parses it as a float.
// All failure modes are reported as *types.ProtocolError.
func (c Client) Request(endpoint string, command []byte) (float64, error) {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	bufSize := c.BufferSize
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	conn, err := net.DialTimeout("tcp", endpoint, timeout)
	if err != nil {
		return 0, &types.ProtocolError{
			Kind:     dialFaultKind(err),
			Endpoint: endpoint,
			Message:  err.Error(),
		}
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(timeout))

	if _, err := conn.Write(command); err != nil {
		return 0, &types.ProtocolError{
			Kind:     readFaultKind(err),
			Endpoint: endpoint,
			Message:  err.Error(),
		}
	}

	buf := make([]byte, bufSize)
	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		if err == io.EOF {
			return 0, &types.ProtocolError{
				Kind:     types.FaultEmptyResponse,
				Endpoint: endpoint,
				Message:  "no data received",
			}
		}
		return 0, &types.ProtocolError{
			Kind:     readFaultKind(err),
			Endpoint: endpoint,
			Message:  err.Error(),
		}
	}

	payload := strings.TrimSpace(string(buf[:n]))
	if payload == "" {
		return 0, &types.ProtocolError{
			Kind:     types.FaultEmptyResponse,
			Endpoint: endpoint,
			Message:  "no data received",
		}
	}

	value, err := strconv.ParseFloat(payload, 64)
	if err != nil {
		return 0, &types.ProtocolError{
			Kind:     types.FaultCorruptData,
			Endpoint: endpoint,
			Message:  "unparseable payload: " + strconv.Quote(payload),
		}
	}

	return value, nil
}

// dialFaultKind maps a dial failure to its fault kind.
func dialFaultKind(err error) types.FaultKind {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return types.FaultTimeout
	}
	return types.FaultConnectionRefused
}

// readFaultKind maps a post-connect I/O failure to its fault kind.
func readFaultKind(err error) types.FaultKind {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return types.FaultTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return types.FaultConnectionRefused
	}
	return types.FaultEmptyResponse
}
