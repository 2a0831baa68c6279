//go:build linux

package serial

import "testing"

func TestBaudRateTermiosSpeedKnown(t *testing.T) {
	for _, b := range []BaudRate{Baud9600, Baud19200, Baud38400, Baud57600, Baud115200} {
		if _, err := b.termiosSpeed(); err != nil {
			t.Fatalf("termiosSpeed(%d): %v", b, err)
		}
	}
}

func TestBaudRateTermiosSpeedUnknown(t *testing.T) {
	if _, err := BaudRate(1234).termiosSpeed(); err == nil {
		t.Fatal("expected an error for an unsupported baud rate")
	}
}

// TestOpenRequiresRealDevice documents that exercising Open/Poll/Read/Write
// end to end needs a real or pseudo-terminal device; CI without one cannot
// run it, so it is skipped rather than faked with a non-tty file
// descriptor that setRawMode's ioctls would reject anyway.
func TestOpenRequiresRealDevice(t *testing.T) {
	t.Skip("requires a real or pseudo-terminal serial device")
}
