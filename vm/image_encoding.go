package vm

import (
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ---------------------------------------------------------------------------
// Program images: compiled programs saved as CBOR
// ---------------------------------------------------------------------------

const (
	// ImageMagic opens every image.
	ImageMagic = "GLSC"
	// ImageVersion is the current image format version.
	ImageVersion uint16 = 1
	// ImageExt is the conventional file extension for images.
	ImageExt = ".glsc"
)

var imageEncMode cbor.EncMode

func init() {
	var err error
	imageEncMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic("vm: cbor enc mode: " + err.Error())
	}
}

// Image is a Program together with the identity of the build that
// produced it.
type Image struct {
	BuildID uuid.UUID
	Entry   string
	Program *Program
}

// NewImage wraps p with a fresh build ID.
func NewImage(p *Program, entry string) *Image {
	return &Image{BuildID: uuid.New(), Entry: entry, Program: p}
}

type wireInstruction struct {
	_           struct{} `cbor:",toarray"`
	Op          uint8
	Dst         uint8
	Src         uint8
	Value       uint64
	Conditional bool
	Name        string
}

type wireImage struct {
	Magic   string            `cbor:"1,keyasint"`
	Version uint16            `cbor:"2,keyasint"`
	BuildID string            `cbor:"3,keyasint"`
	Entry   string            `cbor:"4,keyasint"`
	Code    []wireInstruction `cbor:"5,keyasint"`
	Symbols map[string]int    `cbor:"6,keyasint"`
}

// MarshalBinary encodes the image.
func (img *Image) MarshalBinary() ([]byte, error) {
	w := wireImage{
		Magic:   ImageMagic,
		Version: ImageVersion,
		BuildID: img.BuildID.String(),
		Entry:   img.Entry,
		Code:    make([]wireInstruction, len(img.Program.Code)),
		Symbols: img.Program.Symbols,
	}
	for i, ins := range img.Program.Code {
		w.Code[i] = wireInstruction{
			Op:          uint8(ins.Op),
			Dst:         uint8(ins.Dst),
			Src:         uint8(ins.Src),
			Value:       ins.Value,
			Conditional: ins.Conditional,
			Name:        ins.Name,
		}
	}
	data, err := imageEncMode.Marshal(w)
	if err != nil {
		return nil, errors.Wrap(err, "encode image")
	}
	return data, nil
}

// UnmarshalBinary decodes and validates an image.
func (img *Image) UnmarshalBinary(data []byte) error {
	var w wireImage
	if err := cbor.Unmarshal(data, &w); err != nil {
		return errors.Wrapf(ErrBadImage, "decode: %v", err)
	}
	if w.Magic != ImageMagic {
		return errors.Wrapf(ErrBadImage, "magic %q", w.Magic)
	}
	if w.Version != ImageVersion {
		return errors.Wrapf(ErrBadImage, "version %d, want %d", w.Version, ImageVersion)
	}
	id, err := uuid.Parse(w.BuildID)
	if err != nil {
		return errors.Wrapf(ErrBadImage, "build id: %v", err)
	}

	p := NewProgram()
	p.Code = make([]Instruction, len(w.Code))
	for i, wi := range w.Code {
		p.Code[i] = Instruction{
			Op:          Opcode(wi.Op),
			Dst:         Reg(wi.Dst),
			Src:         Reg(wi.Src),
			Value:       wi.Value,
			Conditional: wi.Conditional,
			Name:        wi.Name,
		}
	}
	for name, entry := range w.Symbols {
		p.Symbols[name] = entry
	}
	if err := p.Validate(); err != nil {
		return errors.Wrap(ErrBadImage, err.Error())
	}

	img.BuildID = id
	img.Entry = w.Entry
	img.Program = p
	return nil
}

// WriteImage encodes img to w.
func WriteImage(w io.Writer, img *Image) error {
	data, err := img.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return errors.Wrap(err, "write image")
}

// ReadImage decodes an image from r.
func ReadImage(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read image")
	}
	img := new(Image)
	if err := img.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return img, nil
}

// SaveImage writes img to the named file.
func SaveImage(path string, img *Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create image")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = errors.Wrap(cerr, "close image")
		}
	}()
	return WriteImage(f, img)
}

// LoadImage reads an image from the named file.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer f.Close()
	img, err := ReadImage(f)
	return img, errors.WithMessage(err, path)
}
