package gdbstub

import "context"

// dispatchResult is what a command handler produces: whether a reply
// should be sent at all (continue/kill send none of their own — the
// receive loop's edge detection or termination handles them), the reply
// body itself, and whether the Session should end its Run loop.
type dispatchResult struct {
	hasReply  bool
	reply     string
	terminate bool
}

// dispatch implements spec §4.2's top-level command table. body is the
// packet payload with the leading '$' and trailing '#cc' already stripped
// by the framer.
func (s *Session) dispatch(ctx context.Context, body string) dispatchResult {
	if body == "" {
		return dispatchResult{hasReply: true, reply: replyEmpty}
	}

	switch body[0] {
	case '!':
		return s.doEnableExtendedMode()
	case '?':
		return dispatchResult{hasReply: true, reply: stopReply(false, 0, 0)}
	case 'c':
		return s.doContinue(ctx)
	case 's':
		return s.doStep(ctx)
	case 'g':
		return s.handleReadAllRegisters(ctx)
	case 'G':
		return s.handleWriteAllRegisters(ctx, body[1:])
	case 'm':
		return s.handleReadMemory(ctx, body[1:])
	case 'M':
		return s.handleWriteMemory(ctx, body[1:])
	case 'p':
		return s.handleReadRegister(ctx, body[1:])
	case 'P':
		return s.handleWriteRegister(ctx, body[1:])
	case 'z', 'Z':
		return s.dispatchTracepoint(ctx, body)
	case 'q', 'Q':
		return s.dispatchQuery(ctx, body)
	case 'v':
		return s.dispatchVerb(ctx, body)
	case 'R':
		return s.doRestart(ctx)
	case 'k':
		return s.doKill(ctx)
	default:
		return dispatchResult{hasReply: true, reply: replyEmpty}
	}
}

// doEnableExtendedMode implements "!": extended mode (which gates R) is
// only granted if the target can actually be restarted, so a GDB session
// never sees it offered only to have R rejected later.
func (s *Session) doEnableExtendedMode() dispatchResult {
	if !s.target.SupportsRestart() {
		return dispatchResult{hasReply: true, reply: replyEmpty}
	}

	s.extendedMode = true

	return dispatchResult{hasReply: true, reply: replyOK}
}

// doContinue implements "c": the target resumes asynchronously, and the
// stop it eventually reaches is reported by Run's running-to-stopped edge
// detection, not by a reply to this packet.
func (s *Session) doContinue(ctx context.Context) dispatchResult {
	if err := s.target.Continue(ctx); err != nil {
		return dispatchResult{hasReply: true, reply: replyError(asStatus(err))}
	}

	return dispatchResult{hasReply: false}
}

// doStep implements "s": unlike Continue, Step is synchronous from the
// Target Adapter's point of view, so the stop-reply is sent immediately.
func (s *Session) doStep(ctx context.Context) dispatchResult {
	if err := s.target.Step(ctx); err != nil {
		return dispatchResult{hasReply: true, reply: replyError(asStatus(err))}
	}

	return dispatchResult{hasReply: true, reply: stopReply(false, 0, 0)}
}

// doRestart implements "R", valid only once extended mode has been
// enabled via "!".
func (s *Session) doRestart(ctx context.Context) dispatchResult {
	if !s.extendedMode {
		return dispatchResult{hasReply: true, reply: replyEmpty}
	}

	if err := s.target.Restart(ctx); err != nil {
		return dispatchResult{hasReply: true, reply: replyError(asStatus(err))}
	}

	return dispatchResult{hasReply: false}
}

// doKill implements "k": the session ends regardless of whether the
// target actually supports being killed, matching spec §4.2's "none;
// session may terminate".
func (s *Session) doKill(ctx context.Context) dispatchResult {
	if s.target.SupportsKill() {
		_ = s.target.Kill(ctx)
	}

	return dispatchResult{hasReply: false, terminate: true}
}

// handleReadAllRegisters implements "g": the full register file, in
// Registers() order, concatenated and hex-encoded.
func (s *Session) handleReadAllRegisters(ctx context.Context) dispatchResult {
	if err := s.target.ReadRegisters(ctx, s.regIndexAll, s.regScratch); err != nil {
		return dispatchResult{hasReply: true, reply: replyError(asStatus(err))}
	}

	var g growBuffer
	for _, buf := range s.regScratch {
		hexEncode(&g, buf)
	}

	return dispatchResult{hasReply: true, reply: g.String()}
}

// handleWriteAllRegisters implements "G<hex>": hex is the concatenation of
// every register's bytes in Registers() order.
func (s *Session) handleWriteAllRegisters(ctx context.Context, hex string) dispatchResult {
	raw, ok := hexDecode(hex)
	if !ok {
		return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
	}

	offset := 0

	for i, r := range s.regs {
		n := r.ByteSize()
		if offset+n > len(raw) {
			return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
		}

		copy(s.regScratch[i], raw[offset:offset+n])
		offset += n
	}

	if err := s.target.WriteRegisters(ctx, s.regIndexAll, s.regScratch); err != nil {
		return dispatchResult{hasReply: true, reply: replyError(asStatus(err))}
	}

	return dispatchResult{hasReply: true, reply: replyOK}
}

// handleReadRegister implements "p<hex-index>".
func (s *Session) handleReadRegister(ctx context.Context, rest string) dispatchResult {
	idx, _, ok := parseHexUint(rest, "")
	if !ok || int(idx) >= len(s.regs) {
		return dispatchResult{hasReply: true, reply: replyError(StatusInvalidParameter)}
	}

	out := [][]byte{s.regScratch[idx]}
	if err := s.target.ReadRegisters(ctx, []int{int(idx)}, out); err != nil {
		return dispatchResult{hasReply: true, reply: replyError(asStatus(err))}
	}

	return dispatchResult{hasReply: true, reply: hexEncodeString(out[0])}
}

// handleWriteRegister implements "P<hex-index>=<hex-value>".
func (s *Session) handleWriteRegister(ctx context.Context, rest string) dispatchResult {
	idx, tail, ok := parseHexUint(rest, "=")
	if !ok || len(tail) == 0 || tail[0] != '=' || int(idx) >= len(s.regs) {
		return dispatchResult{hasReply: true, reply: replyError(StatusInvalidParameter)}
	}

	raw, ok := hexDecode(tail[1:])
	if !ok {
		return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
	}

	buf := s.regScratch[idx]
	n := copy(buf, raw)

	for ; n < len(buf); n++ {
		buf[n] = 0
	}

	if err := s.target.WriteRegisters(ctx, []int{int(idx)}, [][]byte{buf}); err != nil {
		return dispatchResult{hasReply: true, reply: replyError(asStatus(err))}
	}

	return dispatchResult{hasReply: true, reply: replyOK}
}

// handleReadMemory implements "m<hex-addr>,<hex-len>", streaming the
// target's memory through memChunkSize-sized reads instead of allocating
// the full requested length up front.
func (s *Session) handleReadMemory(ctx context.Context, rest string) dispatchResult {
	addr, tail, ok := parseHexUint(rest, ",")
	if !ok || len(tail) == 0 || tail[0] != ',' {
		return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
	}

	length, _, ok := parseHexUint(tail[1:], "")
	if !ok {
		return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
	}

	cursor := addr
	read := func(chunk []byte) (int, error) {
		n, err := s.target.ReadMemory(ctx, cursor, chunk)
		cursor += uint64(n)

		return n, err
	}

	var g growBuffer
	if err := hexEncodeChunked(&g, read, int(length)); err != nil {
		return dispatchResult{hasReply: true, reply: replyError(asStatus(err))}
	}

	return dispatchResult{hasReply: true, reply: g.String()}
}

// handleWriteMemory implements "M<hex-addr>,<hex-len>:<hex-data>".
func (s *Session) handleWriteMemory(ctx context.Context, rest string) dispatchResult {
	addr, tail, ok := parseHexUint(rest, ",")
	if !ok || len(tail) == 0 || tail[0] != ',' {
		return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
	}

	_, tail, ok = parseHexUint(tail[1:], ":")
	if !ok || len(tail) == 0 || tail[0] != ':' {
		return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
	}

	data, ok := hexDecode(tail[1:])
	if !ok {
		return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
	}

	if err := s.target.WriteMemory(ctx, addr, data); err != nil {
		return dispatchResult{hasReply: true, reply: replyError(asStatus(err))}
	}

	return dispatchResult{hasReply: true, reply: replyOK}
}
