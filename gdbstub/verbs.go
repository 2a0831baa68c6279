package gdbstub

import (
	"context"
	"strings"
)

// dispatchVerb implements the v-prefixed branch of the top-level
// dispatcher. Only vCont (query and action forms) is modeled; anything
// else falls through to the empty "unsupported" reply.
func (s *Session) dispatchVerb(ctx context.Context, body string) dispatchResult {
	switch {
	case body == "vCont?":
		return dispatchResult{hasReply: true, reply: "vCont;s;c;t"}
	case strings.HasPrefix(body, "vCont;"):
		return s.dispatchVCont(ctx, body[len("vCont;"):])
	default:
		return dispatchResult{hasReply: true, reply: replyEmpty}
	}
}

// dispatchVCont handles a single vCont action. GDB may send several
// actions separated by ';', each optionally suffixed with ":<thread-id>";
// this stub has one implicit thread, so it runs the first action and
// ignores everything after it.
func (s *Session) dispatchVCont(ctx context.Context, rest string) dispatchResult {
	action := rest
	if i := strings.IndexByte(action, ';'); i >= 0 {
		action = action[:i]
	}

	if i := strings.IndexByte(action, ':'); i >= 0 {
		action = action[:i]
	}

	switch action {
	case "c":
		return s.doContinue(ctx)
	case "s":
		return s.doStep(ctx)
	case "t":
		if err := s.target.Stop(ctx); err != nil {
			return dispatchResult{hasReply: true, reply: replyError(asStatus(err))}
		}

		return dispatchResult{hasReply: false}
	default:
		return dispatchResult{hasReply: true, reply: replyEmpty}
	}
}
