package gdbstub

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// StubVersion is the protocol-feature version this build of the stub
// claims to implement. It is only consulted for the optional
// "vendor-feature=<constraint>" qSupported token some GDB forks send;
// the mandatory qSupported/qXfer:features:read negotiation in spec §4.2
// does not depend on it.
var StubVersion = semver.MustParse("1.0.0")

// negotiateVendorFeature reports whether a peer-advertised
// "vendor-feature=<constraint>" token is satisfied by StubVersion. A
// malformed constraint is treated as unsatisfied rather than an error,
// since an unparseable vendor extension should degrade to "not offered"
// instead of aborting qSupported negotiation.
func negotiateVendorFeature(constraintExpr string) bool {
	constraintExpr = strings.TrimSpace(constraintExpr)
	if constraintExpr == "" {
		return false
	}

	c, err := semver.NewConstraint(constraintExpr)
	if err != nil {
		return false
	}

	return c.Check(StubVersion)
}
