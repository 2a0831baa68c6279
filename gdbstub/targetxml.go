package gdbstub

import "strconv"

// archName and featureName implement spec §4.3's architecture mapping.
//
// Spec §9 flags the donor's AMD64 feature-name mapping as a copy-paste bug
// (AMD64 pointed at "org.gnu.gdb.arm.core"); this port maps AMD64 to
// "org.gnu.gdb.i386.core", matching its "i386:x86-64" architecture string.
// See DESIGN.md "Open Question decisions" and targetxml_test.go.
func archName(a Architecture) string {
	switch a {
	case ArchARM:
		return "arm"
	case ArchX86:
		return "i386"
	case ArchAMD64:
		return "i386:x86-64"
	default:
		return "unknown"
	}
}

func featureName(a Architecture) string {
	switch a {
	case ArchARM:
		return "org.gnu.gdb.arm.core"
	case ArchX86, ArchAMD64:
		return "org.gnu.gdb.i386.core"
	default:
		return "org.gnu.gdb.unknown.core"
	}
}

func regTypeAttr(class RegisterClass) string {
	switch class {
	case RegClassProgramCounter:
		return "code_ptr"
	case RegClassStackPointer:
		return "data_ptr"
	case RegClassCodePointer:
		return "code_ptr"
	default:
		return ""
	}
}

// xmlWriter accumulates the target-description document with an up-front
// size pass so the allocation and the write loop cannot drift apart, per
// spec §9's note on the donor's ad-hoc concatenation.
type xmlWriter struct {
	buf []byte
}

func (w *xmlWriter) size(regs []RegisterDescriptor, arch, feature string) int {
	n := len(`<?xml version="1.0"?>`)
	n += len(`<!DOCTYPE target SYSTEM "gdb-target.dtd">`)
	n += len(`<target version="1.0">`)
	n += len(`<architecture></architecture>`) + len(arch)
	n += len(`<feature name="">`) + len(feature)

	for _, r := range regs {
		n += len(`<reg name="" bitsize=""/>`) + len(r.Name) + len(strconv.Itoa(r.BitSize))

		if t := regTypeAttr(r.Class); t != "" {
			n += len(` type=""`) + len(t)
		}
	}

	n += len(`</feature></target>`)

	return n
}

// build renders the full document into w.buf, sized by size() first.
func (w *xmlWriter) build(regs []RegisterDescriptor, arch, feature string) []byte {
	w.buf = make([]byte, 0, w.size(regs, arch, feature))

	w.buf = append(w.buf, `<?xml version="1.0"?>`...)
	w.buf = append(w.buf, `<!DOCTYPE target SYSTEM "gdb-target.dtd">`...)
	w.buf = append(w.buf, `<target version="1.0">`...)
	w.buf = append(w.buf, `<architecture>`...)
	w.buf = append(w.buf, arch...)
	w.buf = append(w.buf, `</architecture>`...)
	w.buf = append(w.buf, `<feature name="`...)
	w.buf = append(w.buf, feature...)
	w.buf = append(w.buf, `">`...)

	for _, r := range regs {
		w.buf = append(w.buf, `<reg name="`...)
		w.buf = append(w.buf, r.Name...)
		w.buf = append(w.buf, `" bitsize="`...)
		w.buf = append(w.buf, strconv.Itoa(r.BitSize)...)
		w.buf = append(w.buf, '"')

		if t := regTypeAttr(r.Class); t != "" {
			w.buf = append(w.buf, ` type="`...)
			w.buf = append(w.buf, t...)
			w.buf = append(w.buf, '"')
		}

		w.buf = append(w.buf, "/>"...)
	}

	w.buf = append(w.buf, `</feature></target>`...)

	return w.buf
}

// buildTargetXML builds the cached target-description document for target,
// built at most once per Session (spec §3's "cbTgtXmlDesc and pbTgtXmlDesc
// are always consistent" invariant).
func buildTargetXML(regs []RegisterDescriptor, arch Architecture) []byte {
	var w xmlWriter

	return w.build(regs, archName(arch), featureName(arch))
}
