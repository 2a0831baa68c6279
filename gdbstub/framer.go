package gdbstub

// recvState is the Packet Framer's three-state receive machine (spec §4.1).
type recvState int

const (
	stateWaitForStart recvState = iota
	stateReceiveBody
	stateReceiveChecksum
)

// frameEvent is what feedByte produced for the byte just fed.
type frameEvent int

const (
	eventNone frameEvent = iota
	eventPacketGood
	eventBadChecksum
	eventInterrupt
)

// framer is the Packet Framer: it locates "$...#cc" frames in an arbitrary
// byte stream, validates the checksum, and reports interrupts (0x03)
// observed outside a frame. It never buffers more than the in-flight
// packet; body is reset at every packet boundary (capacity is retained by
// the underlying slice, matching spec §3's "only shrinks at explicit reset
// points").
type framer struct {
	body          growBuffer
	state         recvState
	checksumHex   [2]byte
	checksumCount int
}

// reset returns the framer to waitForStart without freeing buffers, per
// spec §6's Session Reset operation.
func (f *framer) reset() {
	f.state = stateWaitForStart
	f.body.reset()
	f.checksumCount = 0
}

// feedByte advances the state machine by exactly one input byte and
// reports what happened. Callers must feed every byte of a received chunk
// in order; a single chunk may produce many events.
func (f *framer) feedByte(b byte) frameEvent {
	switch f.state {
	case stateWaitForStart:
		switch b {
		case '$':
			f.body.reset()
			f.state = stateReceiveBody

			return eventNone
		case 0x03:
			return eventInterrupt
		default:
			// No '$' yet: discard. Nothing is buffered in this state, so
			// there is nothing to shrink.
			return eventNone
		}

	case stateReceiveBody:
		if b == '#' {
			f.state = stateReceiveChecksum
			f.checksumCount = 0

			return eventNone
		}

		f.body.WriteByte(b) //nolint:errcheck // growBuffer.WriteByte never errors

		return eventNone

	case stateReceiveChecksum:
		f.checksumHex[f.checksumCount] = b
		f.checksumCount++

		if f.checksumCount < 2 {
			return eventNone
		}

		hi, okHi := hexNibble(f.checksumHex[0])
		lo, okLo := hexNibble(f.checksumHex[1])
		f.state = stateWaitForStart

		if !okHi || !okLo {
			return eventBadChecksum
		}

		got := hi<<4 | lo
		want := checksum8(f.body.Bytes())

		if got != want {
			return eventBadChecksum
		}

		return eventPacketGood

	default:
		return eventNone
	}
}
