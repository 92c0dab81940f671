package regmap

import (
	"errors"
	"testing"
)

func TestMemReadsZeroWhenUnwritten(t *testing.T) {
	var m Mem
	val, err := m.Read32(0x40)
	if err != nil {
		t.Fatalf("Read32 failed: %v", err)
	}
	if val != 0 {
		t.Fatalf("unwritten register read %#x, want 0", val)
	}
}

func TestMemRoundTrip(t *testing.T) {
	var m Mem
	if err := m.Write32(0x48, 0xdeadbeef); err != nil {
		t.Fatalf("Write32 failed: %v", err)
	}
	val, err := m.Read32(0x48)
	if err != nil {
		t.Fatalf("Read32 failed: %v", err)
	}
	if val != 0xdeadbeef {
		t.Fatalf("read %#x, want %#x", val, 0xdeadbeef)
	}
}

func TestUpdateBits(t *testing.T) {
	tests := []struct {
		name    string
		initial uint32
		mask    uint32
		bits    uint32
		want    uint32
	}{
		{"clear masked bits", 0xffff, 0xffc0, 0, 0x003f},
		{"set masked bits", 0x0000, 0x00f0, 0x00f0, 0x00f0},
		{"untouched outside mask", 0x1234, 0x000f, 0x0008, 0x1238},
		{"bits outside mask ignored", 0x0000, 0x00ff, 0xff55, 0x0055},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var m Mem
			m.Seed(0, tc.initial)
			if err := UpdateBits(&m, 0, tc.mask, tc.bits); err != nil {
				t.Fatalf("UpdateBits failed: %v", err)
			}
			got, _ := m.Read32(0)
			if got != tc.want {
				t.Fatalf("register is %#x, want %#x", got, tc.want)
			}
		})
	}
}

func TestClearBitsPreservesUnmasked(t *testing.T) {
	var m Mem
	m.Seed(0, 0xffff)
	if err := ClearBits(&m, 0, 0xffff&^uint32(0x3f)); err != nil {
		t.Fatalf("ClearBits failed: %v", err)
	}
	got, _ := m.Read32(0)
	if got != 0x3f {
		t.Fatalf("register is %#x, want %#x", got, 0x3f)
	}
}

func TestWindowShiftsOffsets(t *testing.T) {
	var m Mem
	w := Window(&m, 0x4c)
	if err := w.Write32(0, 0x1234); err != nil {
		t.Fatalf("Write32 failed: %v", err)
	}
	got, _ := m.Read32(0x4c)
	if got != 0x1234 {
		t.Fatalf("underlying register is %#x, want 0x1234", got)
	}
	val, err := w.Read32(0)
	if err != nil || val != 0x1234 {
		t.Fatalf("window read %#x, %v; want 0x1234, nil", val, err)
	}
}

func TestFuncUnhandled(t *testing.T) {
	var f Func
	if _, err := f.Read32(0x10); err == nil {
		t.Fatal("expected error from unhandled read")
	}
	if err := f.Write32(0x10, 1); err == nil {
		t.Fatal("expected error from unhandled write")
	}
}

func TestUpdateBitsPropagatesReadError(t *testing.T) {
	boom := errors.New("boom")
	f := Func{ReadFunc: func(uint32) (uint32, error) { return 0, boom }}
	if err := UpdateBits(f, 0, 0xffff, 0); !errors.Is(err, boom) {
		t.Fatalf("got %v, want read error", err)
	}
}
