//go:build linux

// Package serial adapts a raw-mode serial line (opened as a plain file
// descriptor) to gdbstub.TransportAdapter, the way an embedded target
// typically reaches GDB over a UART instead of TCP.
package serial

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// BaudRate is one of the standard termios speeds this package configures.
type BaudRate int

const (
	Baud9600   BaudRate = 9600
	Baud19200  BaudRate = 19200
	Baud38400  BaudRate = 38400
	Baud57600  BaudRate = 57600
	Baud115200 BaudRate = 115200
)

func (b BaudRate) termiosSpeed() (uint32, error) {
	switch b {
	case Baud9600:
		return unix.B9600, nil
	case Baud19200:
		return unix.B19200, nil
	case Baud38400:
		return unix.B38400, nil
	case Baud57600:
		return unix.B57600, nil
	case Baud115200:
		return unix.B115200, nil
	default:
		return 0, fmt.Errorf("serial: unsupported baud rate %d", b)
	}
}

// Transport is a gdbstub.TransportAdapter backed by a tty device put into
// raw mode (no echo, no line discipline, 8N1) via termios ioctls.
type Transport struct {
	f  *os.File
	fd int
}

// Open opens path (e.g. "/dev/ttyUSB0") and configures it for raw,
// unbuffered byte-oriented I/O at the given baud rate.
func Open(path string, baud BaudRate) (*Transport, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", path, err)
	}

	fd := int(f.Fd())

	if err := setRawMode(fd, baud); err != nil {
		f.Close()

		return nil, err
	}

	return &Transport{f: f, fd: fd}, nil
}

func setRawMode(fd int, baud BaudRate) error {
	speed, err := baud.termiosSpeed()
	if err != nil {
		return err
	}

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("serial: get termios: %w", err)
	}

	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB | unix.CBAUD
	t.Cflag |= unix.CS8 | unix.CLOCAL | speed

	t.Ispeed = speed
	t.Ospeed = speed

	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}

// Close releases the underlying file descriptor.
func (t *Transport) Close() error { return t.f.Close() }

func (t *Transport) Peek(ctx context.Context) (int, error) {
	n, err := unixBytesAvailable(t.fd)
	if err != nil {
		return 0, fmt.Errorf("serial: peek: %w", err)
	}

	return n, nil
}

func (t *Transport) Read(ctx context.Context, buf []byte) (int, error) {
	return t.f.Read(buf)
}

func (t *Transport) Write(ctx context.Context, buf []byte) error {
	_, err := t.f.Write(buf)

	return err
}

// pollInterval is how often Poll re-samples the FIONREAD ioctl while
// waiting, since a tty has no readiness-notification primitive as
// convenient as net.Conn's read deadlines.
const pollInterval = 5 * time.Millisecond

// Poll busy-waits (at pollInterval) for data to arrive or ctx to end. This
// is the stand-in for an interrupt-driven UART receive on a freestanding
// target where a blocking read is either unavailable or undesirable
// because it cannot be interrupted by ctx cancellation.
func (t *Transport) Poll(ctx context.Context) error {
	for {
		n, err := unixBytesAvailable(t.fd)
		if err != nil {
			return fmt.Errorf("serial: poll: %w", err)
		}

		if n > 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

var errUnsupportedPlatform = errors.New("serial: FIONREAD not supported on this platform")

func unixBytesAvailable(fd int) (int, error) {
	n, err := unix.IoctlGetInt(fd, unix.FIONREAD)
	if err != nil {
		if errors.Is(err, unix.ENOTTY) {
			return 0, errUnsupportedPlatform
		}

		return 0, err
	}

	return n, nil
}
