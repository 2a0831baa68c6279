package gdbstub

import (
	"strings"
	"testing"
)

// TestFeatureNameAMD64 is the spec §9 regression test: AMD64 must map to
// the i386-family feature namespace, not ARM's.
func TestFeatureNameAMD64(t *testing.T) {
	if got := featureName(ArchAMD64); got != "org.gnu.gdb.i386.core" {
		t.Fatalf("featureName(ArchAMD64) = %q, want org.gnu.gdb.i386.core", got)
	}

	if got := archName(ArchAMD64); got != "i386:x86-64" {
		t.Fatalf("archName(ArchAMD64) = %q, want i386:x86-64", got)
	}
}

func TestFeatureNameARM(t *testing.T) {
	if got := featureName(ArchARM); got != "org.gnu.gdb.arm.core" {
		t.Fatalf("featureName(ArchARM) = %q, want org.gnu.gdb.arm.core", got)
	}
}

func TestFeatureNameDistinctAcrossArchitectures(t *testing.T) {
	if featureName(ArchAMD64) == featureName(ArchARM) {
		t.Fatal("AMD64 and ARM must not share a feature namespace")
	}
}

func TestBuildTargetXMLSizeMatchesOutput(t *testing.T) {
	regs := []RegisterDescriptor{
		{Name: "r0", BitSize: 32, Class: RegClassGeneral},
		{Name: "pc", BitSize: 32, Class: RegClassProgramCounter},
		{Name: "sp", BitSize: 32, Class: RegClassStackPointer},
	}

	var w xmlWriter

	want := w.size(regs, archName(ArchARM), featureName(ArchARM))
	doc := w.build(regs, archName(ArchARM), featureName(ArchARM))

	if len(doc) != want {
		t.Fatalf("size() predicted %d bytes, build() produced %d", want, len(doc))
	}
}

func TestBuildTargetXMLContainsEveryRegister(t *testing.T) {
	regs := []RegisterDescriptor{
		{Name: "eax", BitSize: 32, Class: RegClassGeneral},
		{Name: "eip", BitSize: 32, Class: RegClassProgramCounter},
	}

	doc := string(buildTargetXML(regs, ArchX86))

	for _, want := range []string{`name="eax"`, `name="eip"`, `bitsize="32"`, `type="code_ptr"`, `<architecture>i386</architecture>`, `org.gnu.gdb.i386.core`} {
		if !strings.Contains(doc, want) {
			t.Fatalf("target.xml missing %q:\n%s", want, doc)
		}
	}
}
