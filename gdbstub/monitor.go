package gdbstub

import (
	"strconv"
	"strings"
)

// monitorScratchSize is the Monitor Output Helper's fixed capacity (spec
// §4.5).
const monitorScratchSize = 512

// MonitorWriter is the formatter callable exposed to qRcmd custom command
// callbacks. It owns a fixed-capacity scratch buffer; output beyond
// capacity is silently truncated, matching spec §4.5.
type MonitorWriter struct {
	scratch [monitorScratchSize]byte
	n       int
}

func (m *MonitorWriter) reset() { m.n = 0 }

func (m *MonitorWriter) bytes() []byte { return m.scratch[:m.n] }

func (m *MonitorWriter) appendString(s string) {
	room := monitorScratchSize - m.n
	if room <= 0 {
		return
	}

	if len(s) > room {
		s = s[:room]
	}

	m.n += copy(m.scratch[m.n:], s)
}

func (m *MonitorWriter) appendByte(b byte) {
	if m.n >= monitorScratchSize {
		return
	}

	m.scratch[m.n] = b
	m.n++
}

// Printf supports the conversions spec §4.5 names: %u, %d, %s, %x, %X
// (64-bit), %p, %%, with "#" prefixing 0x/0X on %x/%X/%p. Anything else in
// the format string is copied through literally, matching the "printf-style
// formatter" shape without pulling in the full fmt verb grammar.
func (m *MonitorWriter) Printf(format string, args ...interface{}) {
	argi := 0

	nextArg := func() interface{} {
		if argi >= len(args) {
			return nil
		}

		v := args[argi]
		argi++

		return v
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i == len(format)-1 {
			m.appendByte(c)

			continue
		}

		i++

		alt := false
		if format[i] == '#' {
			alt = true
			i++

			if i >= len(format) {
				break
			}
		}

		switch format[i] {
		case '%':
			m.appendByte('%')
		case 'u':
			m.appendString(strconv.FormatUint(toUint64(nextArg()), 10))
		case 'd':
			m.appendString(strconv.FormatInt(toInt64(nextArg()), 10))
		case 's':
			if s, ok := nextArg().(string); ok {
				m.appendString(s)
			}
		case 'x':
			s := strconv.FormatUint(toUint64(nextArg()), 16)
			if alt {
				s = "0x" + s
			}

			m.appendString(s)
		case 'X':
			s := strings.ToUpper(strconv.FormatUint(toUint64(nextArg()), 16))
			if alt {
				s = "0X" + s
			}

			m.appendString(s)
		case 'p':
			s := "0x" + strconv.FormatUint(toUint64(nextArg()), 16)
			m.appendString(s)
		default:
			m.appendByte('%')
			m.appendByte(format[i])
		}
	}
}

func toUint64(v interface{}) uint64 {
	switch n := v.(type) {
	case uint64:
		return n
	case uint32:
		return uint64(n)
	case int:
		return uint64(n)
	case int64:
		return uint64(n)
	default:
		return 0
	}
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	default:
		return 0
	}
}
