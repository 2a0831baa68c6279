package gdbstub

import "testing"

func feedAll(f *framer, s string) []frameEvent {
	events := make([]frameEvent, 0, len(s))
	for i := 0; i < len(s); i++ {
		events = append(events, f.feedByte(s[i]))
	}

	return events
}

func lastNonNone(events []frameEvent) frameEvent {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i] != eventNone {
			return events[i]
		}
	}

	return eventNone
}

func TestFramerGoodPacket(t *testing.T) {
	var f framer

	events := feedAll(&f, "$qSupported#37")
	if got := lastNonNone(events); got != eventPacketGood {
		t.Fatalf("got %v, want eventPacketGood", got)
	}

	if got := f.body.String(); got != "qSupported" {
		t.Fatalf("body = %q, want %q", got, "qSupported")
	}
}

func TestFramerBadChecksum(t *testing.T) {
	var f framer

	events := feedAll(&f, "$qSupported#00")
	if got := lastNonNone(events); got != eventBadChecksum {
		t.Fatalf("got %v, want eventBadChecksum", got)
	}
}

func TestFramerInterruptOutsideFrame(t *testing.T) {
	var f framer

	if got := f.feedByte(0x03); got != eventInterrupt {
		t.Fatalf("got %v, want eventInterrupt", got)
	}
}

func TestFramerDiscardsNoiseBeforeStart(t *testing.T) {
	var f framer

	events := feedAll(&f, "garbage$OK#9a")
	if got := lastNonNone(events); got != eventPacketGood {
		t.Fatalf("got %v, want eventPacketGood", got)
	}

	if got := f.body.String(); got != "OK" {
		t.Fatalf("body = %q, want %q", got, "OK")
	}
}

func TestFramerResetClearsBodyNotCapacity(t *testing.T) {
	var f framer

	feedAll(&f, "$aaaaaaaaaa#CA")
	cap1 := cap(f.body.buf)

	f.reset()

	if len(f.body.buf) != 0 {
		t.Fatalf("body not cleared after reset: %q", f.body.buf)
	}

	if cap(f.body.buf) < cap1 {
		t.Fatalf("reset shrank capacity: got %d, had %d", cap(f.body.buf), cap1)
	}
}

func TestFramerSequentialPackets(t *testing.T) {
	var f framer

	events := feedAll(&f, "$g#67$c#63")

	var good int

	for _, e := range events {
		if e == eventPacketGood {
			good++
		}
	}

	if good != 2 {
		t.Fatalf("got %d good packets, want 2", good)
	}
}
