package gdbstub

import "context"

// tracepointKindFromDigit maps RSP's single-digit Z/z type field to
// TracepointKind, per the standard RSP breakpoint/watchpoint numbering.
func tracepointKindFromDigit(d byte) (TracepointKind, bool) {
	switch d {
	case '0':
		return TracepointSoftwareBreak, true
	case '1':
		return TracepointHardwareBreak, true
	case '2':
		return TracepointWriteWatch, true
	case '3':
		return TracepointReadWatch, true
	case '4':
		return TracepointAccessWatch, true
	default:
		return 0, false
	}
}

// dispatchTracepoint implements the "z T,addr,kind / Z ..." row of spec
// §4.2's top-level table: body is "Z0,1000,4" (set) or "z0,1000,4" (clear).
func (s *Session) dispatchTracepoint(ctx context.Context, body string) dispatchResult {
	set := body[0] == 'Z'

	if len(body) < 2 {
		return dispatchResult{hasReply: true, reply: replyEmpty}
	}

	kind, ok := tracepointKindFromDigit(body[1])
	if !ok {
		return dispatchResult{hasReply: true, reply: replyEmpty}
	}

	rest := body[2:]
	if len(rest) == 0 || rest[0] != ',' {
		return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
	}

	rest = rest[1:]

	// Both forms start with "addr": "Z<kind>,addr,length" (set) or
	// "z<kind>,addr[,length]" (clear) — a clear's length field, if present,
	// is not parsed.
	addr, rest, ok := parseHexUint(rest, ",;")
	if !ok {
		return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
	}

	var (
		length uint64
		err    error
	)

	if set {
		if len(rest) == 0 || rest[0] != ',' {
			return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
		}

		length, _, ok = parseHexUint(rest[1:], ";")
		if !ok {
			return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
		}

		err = s.target.SetTracepoint(ctx, kind, addr, int(length))
	} else {
		err = s.target.ClearTracepoint(ctx, kind, addr)
	}

	switch {
	case err == nil:
		return dispatchResult{hasReply: true, reply: replyOK}
	case asStatus(err) == StatusNotSupported:
		return dispatchResult{hasReply: true, reply: replyEmpty}
	default:
		return dispatchResult{hasReply: true, reply: replyError(asStatus(err))}
	}
}
