package evo

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/Wint3rmute/bacteria-vm/program"
)

// Champion is the best genome observed so far, together with the
// fitness of the run that produced it.
type Champion struct {
	Genome      []byte
	Fitness     int
	Fingerprint [32]byte
}

// ShortID returns a short hex prefix of the genome fingerprint,
// suitable for log output.
func (c *Champion) ShortID() string {
	return hex.EncodeToString(c.Fingerprint[:4])
}

// fingerprint returns the Keccak-256 hash of a genome.
func fingerprint(genome []byte) [32]byte {
	w := sha3.NewLegacyKeccak256()
	w.Write(genome)

	var h [32]byte
	w.Sum(h[:0])
	return h
}

// FileStore persists the champion to a single file, overwriting the
// previous image. One file holds one program.
type FileStore struct {
	Path string
}

// Save writes the genome to the store's file.
func (s FileStore) Save(genome []byte) error {
	return program.SaveFile(s.Path, genome)
}
