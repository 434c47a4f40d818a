package core

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID identifies archived search runs and hyperparameter sets.
// It is derived from content so identical inputs produce identical IDs.
type ID uint64

// String renders the ID as fixed-width hex.
func (id ID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// ParseID parses the hex form produced by ID.String.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

// IDFromContent generates a deterministic ID from content using BLAKE2b hashing.
func IDFromContent(content []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(content)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Fingerprint returns the content ID of h's canonical JSON encoding.
// Two sets with the same keys in the same order and equal values share a fingerprint.
func (h *HParams) Fingerprint() (ID, error) {
	b, err := h.MarshalJSON()
	if err != nil {
		return 0, err
	}
	return IDFromContent(b), nil
}

// Fingerprint returns the content ID of c's canonical JSON encoding.
func (c *SearchConfig) Fingerprint() (ID, error) {
	b, err := c.MarshalJSON()
	if err != nil {
		return 0, err
	}
	return IDFromContent(b), nil
}

// Run is one archived search invocation.
type Run struct {
	Id         ID
	Seed       int64
	NumGroups  int
	ConfigId   ID // fingerprint of the search config
	BaseId     ID // fingerprint of the base hyperparameters
	OutputDir  string
	InsertedAt time.Time
	Group      Group
}

// RunID derives the archive ID of a search invocation from its inputs, so
// re-running the same search with the same seed maps to the same run.
func RunID(base *HParams, cfg *SearchConfig, numGroups int, seed int64) (ID, error) {
	baseID, err := base.Fingerprint()
	if err != nil {
		return 0, err
	}
	cfgID, err := cfg.Fingerprint()
	if err != nil {
		return 0, err
	}
	buf := make([]byte, 32)
	binary.BigEndian.PutUint64(buf[0:], uint64(baseID))
	binary.BigEndian.PutUint64(buf[8:], uint64(cfgID))
	binary.BigEndian.PutUint64(buf[16:], uint64(numGroups))
	binary.BigEndian.PutUint64(buf[24:], uint64(seed))
	return IDFromContent(buf), nil
}
