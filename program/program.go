// Package program reads and writes raw program images.
//
// A program is exactly 256 bytes with no header, checksum or version
// tag: byte i of the stream is memory cell i.
package program

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/Wint3rmute/bacteria-vm/vm"
)

// Size is the exact length of a serialized program in bytes.
const Size = vm.MemorySize

// Read reads one program image from the given stream.
// It fails if fewer than Size bytes are available.
func Read(r io.Reader) ([]byte, error) {
	p := make([]byte, Size)
	if _, err := io.ReadFull(r, p); err != nil {
		return nil, errors.Wrapf(err, "program: reading image")
	}
	return p, nil
}

// Write writes one program image to the given stream.
func Write(w io.Writer, p []byte) error {
	if len(p) != Size {
		return errors.Errorf("program: invalid image size %d, want %d", len(p), Size)
	}
	_, err := w.Write(p)
	return errors.Wrapf(err, "program: writing image")
}

// LoadFile reads a program image from the given file.
func LoadFile(path string) ([]byte, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "program")
	}
	defer fd.Close()
	return Read(fd)
}

// SaveFile writes a program image to the given file, replacing any
// previous contents.
func SaveFile(path string, p []byte) error {
	fd, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "program")
	}
	if err := Write(fd, p); err != nil {
		fd.Close()
		return err
	}
	return errors.Wrapf(fd.Close(), "program")
}
