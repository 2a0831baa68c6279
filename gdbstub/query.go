package gdbstub

import (
	"context"
	"strings"
)

// queryEntry is one row of the q/Q sub-dispatch table (spec §4.2's "houses
// sub-dispatchers for q/Q" note).
type queryEntry struct {
	prefix string
	handle func(s *Session, ctx context.Context, body string) dispatchResult
}

// queryTable must stay sorted by descending prefix length: a shorter prefix
// earlier in the slice would shadow a longer, more specific one that starts
// the same way (e.g. "qSupported" would swallow a hypothetical
// "qSupportedExtra"). init() below asserts the ordering so a careless
// insertion fails loudly instead of silently mis-routing a command.
var queryTable = []queryEntry{
	{"qXfer:features:read:", (*Session).handleQXferFeatures},
	{"qSupported", (*Session).handleQSupported},
	{"qTStatus", (*Session).handleQTStatus},
	{"qRcmd,", (*Session).handleQRcmd},
}

func init() {
	for i := 1; i < len(queryTable); i++ {
		if len(queryTable[i].prefix) > len(queryTable[i-1].prefix) {
			panic("gdbstub: queryTable is not sorted by descending prefix length")
		}
	}
}

// dispatchQuery implements the q/Q branch of the top-level dispatcher.
// Unrecognized queries get the empty "unsupported" reply, per spec §4.2's
// default row.
func (s *Session) dispatchQuery(ctx context.Context, body string) dispatchResult {
	for _, e := range queryTable {
		if strings.HasPrefix(body, e.prefix) {
			return e.handle(s, ctx, body)
		}
	}

	return dispatchResult{hasReply: true, reply: replyEmpty}
}

// handleQSupported offers "qXfer:features:read+" whenever the Session's
// TargetDescriptionRead feature is enabled (the default): the Feature
// Bitset this stub negotiates covers target-description reads only (spec
// §4.2, literal scenario 1). A "vendor-feature=<constraint>" token in
// the request is acknowledged with ";vendor-feature+" when StubVersion
// satisfies it, using the semver negotiation from version.go; GDB proper
// never sends this token, but vendor forks that do get a real answer
// instead of silence.
func (s *Session) handleQSupported(_ context.Context, body string) dispatchResult {
	reply := ""
	if s.features.TargetDescriptionRead {
		reply = "qXfer:features:read+"
	}

	if idx := strings.IndexByte(body, ':'); idx >= 0 {
		for _, tok := range strings.Split(body[idx+1:], ";") {
			const vendorPrefix = "vendor-feature="
			if strings.HasPrefix(tok, vendorPrefix) && negotiateVendorFeature(tok[len(vendorPrefix):]) {
				reply += ";vendor-feature+"
			}
		}
	}

	return dispatchResult{hasReply: true, reply: reply}
}

// handleQXferFeatures serves "qXfer:features:read:<annex>:<off>,<len>". The
// only annex this stub ever offers is "target.xml" (the name advertised
// nowhere else, by RSP convention, since qSupported only promises the
// object class exists).
func (s *Session) handleQXferFeatures(_ context.Context, body string) dispatchResult {
	if !s.features.TargetDescriptionRead {
		return dispatchResult{hasReply: true, reply: replyEmpty}
	}

	const prefix = "qXfer:features:read:"
	rest := body[len(prefix):]

	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
	}

	annex, offlen := rest[:colon], rest[colon+1:]
	if annex != "target.xml" {
		return dispatchResult{hasReply: true, reply: replyError(StatusNotFound)}
	}

	off, tail, ok := parseHexUint(offlen, ",")
	if !ok || len(tail) == 0 || tail[0] != ',' {
		return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
	}

	length, _, ok := parseHexUint(tail[1:], "")
	if !ok {
		return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
	}

	marker, chunk := xferChunk(s.targetXML, off, length)

	var g growBuffer
	g.WriteByte(marker) //nolint:errcheck // growBuffer.WriteByte never errors
	escapeBinary(&g, chunk)

	return dispatchResult{hasReply: true, reply: g.String()}
}

// handleQTStatus answers the trace-status query with "no trace experiment
// running", the only state this stub's tracepoint model supports.
func (s *Session) handleQTStatus(_ context.Context, _ string) dispatchResult {
	return dispatchResult{hasReply: true, reply: "T0"}
}

// handleQRcmd decodes a "qRcmd,<hex>" monitor command, looks it up in the
// session's and target's combined custom-command table, and runs it. The
// command's MonitorWriter output comes back hex-encoded, matching GDB's
// "monitor" console convention; a command that writes nothing and returns
// nil is reported as a bare OK.
func (s *Session) handleQRcmd(_ context.Context, body string) dispatchResult {
	const prefix = "qRcmd,"

	raw, ok := hexDecode(body[len(prefix):])
	if !ok {
		return dispatchResult{hasReply: true, reply: replyError(StatusProtocolViolation)}
	}

	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return dispatchResult{hasReply: true, reply: replyError(StatusNotFound)}
	}

	name, args := fields[0], fields[1:]

	cmd, ok := s.lookupCustomCommand(name)
	if !ok {
		return dispatchResult{hasReply: true, reply: replyError(StatusNotFound)}
	}

	s.monitor.reset()

	if err := cmd.Run(&s.monitor, args); err != nil {
		return dispatchResult{hasReply: true, reply: replyError(asStatus(err))}
	}

	out := s.monitor.bytes()
	if len(out) == 0 {
		return dispatchResult{hasReply: true, reply: replyOK}
	}

	return dispatchResult{hasReply: true, reply: hexEncodeString(out)}
}

// lookupCustomCommand checks session-level commands (from WithMonitorCommands)
// before the target adapter's own table, so an embedder can shadow or add to
// a target's monitor commands without modifying the adapter.
func (s *Session) lookupCustomCommand(name string) (CustomCommand, bool) {
	for _, c := range s.extraMonitor {
		if c.Name == name {
			return c, true
		}
	}

	for _, c := range s.target.CustomCommands() {
		if c.Name == name {
			return c, true
		}
	}

	return CustomCommand{}, false
}
