package vm

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func sampleProgram() *Program {
	p := NewProgram()
	p.Append(
		Marker("main"),
		LoadImm(0, 40),
		LoadImm(1, 2),
		Pair(OpAdd, 0, 1),
		Mem(OpStrLong, 0, 2, 8),
		CondBranch(OpCall, 3, 5),
		Return(),
	)
	p.Symbols["main"] = 1
	return p
}

func TestImageRoundTrip(t *testing.T) {
	img := NewImage(sampleProgram(), "main")

	var buf bytes.Buffer
	if err := WriteImage(&buf, img); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}
	got, err := ReadImage(&buf)
	if err != nil {
		t.Fatalf("ReadImage: %v", err)
	}
	if got.BuildID != img.BuildID {
		t.Errorf("BuildID = %s, want %s", got.BuildID, img.BuildID)
	}
	if got.Entry != "main" {
		t.Errorf("Entry = %q, want main", got.Entry)
	}
	if len(got.Program.Code) != len(img.Program.Code) {
		t.Fatalf("len(Code) = %d, want %d", len(got.Program.Code), len(img.Program.Code))
	}
	for i := range img.Program.Code {
		if got.Program.Code[i] != img.Program.Code[i] {
			t.Errorf("slot %d = %+v, want %+v", i, got.Program.Code[i], img.Program.Code[i])
		}
	}
	if got.Program.Symbols["main"] != 1 {
		t.Errorf("Symbols = %v", got.Program.Symbols)
	}
}

func TestImageEncodingIsDeterministic(t *testing.T) {
	img := NewImage(sampleProgram(), "main")
	a, err := img.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	b, _ := img.MarshalBinary()
	if !bytes.Equal(a, b) {
		t.Error("canonical encoding produced different bytes")
	}
}

func TestImageRejectsBadInput(t *testing.T) {
	good, err := NewImage(sampleProgram(), "main").MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	badMagic, _ := cbor.Marshal(wireImage{Magic: "NOPE", Version: ImageVersion})
	badVersion, _ := cbor.Marshal(wireImage{Magic: ImageMagic, Version: 99})
	badOpcode, _ := cbor.Marshal(wireImage{
		Magic:   ImageMagic,
		Version: ImageVersion,
		BuildID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Code:    []wireInstruction{{Op: 0xEE}},
	})
	badSymbol, _ := cbor.Marshal(wireImage{
		Magic:   ImageMagic,
		Version: ImageVersion,
		BuildID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Code:    []wireInstruction{{Op: uint8(OpHalt)}},
		Symbols: map[string]int{"main": 1},
	})

	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte{0xff, 0x00, 0x13}},
		{"truncated", good[:len(good)/2]},
		{"magic", badMagic},
		{"version", badVersion},
		{"opcode", badOpcode},
		{"symbol", badSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadImage(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrBadImage) {
				t.Errorf("err = %v, want ErrBadImage", err)
			}
		})
	}
}

func TestSaveAndLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog"+ImageExt)
	img := NewImage(sampleProgram(), "main")
	if err := SaveImage(path, img); err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	got, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if got.Program.Len() != img.Program.Len() {
		t.Errorf("loaded %d slots, want %d", got.Program.Len(), img.Program.Len())
	}

	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.glsc")); err == nil {
		t.Error("expected error loading a missing file")
	}
}
