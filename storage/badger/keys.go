package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/lmtune/core"
)

// Key prefixes for different data types
const (
	runRecordPrefix = "runrec"
	runDatePrefix   = "runrecd"
)

// makeRunKey generates a key for a run by ID.
func makeRunKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s", runRecordPrefix, id))
}

// makeRunDateKey generates a composite key for the insertion-time index.
// Format: prefix:timestamp:id
func makeRunDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := runDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeRunDateSeekKey generates the key reverse iteration starts from:
// one past every possible entry of the date index.
func makeRunDateSeekKey() []byte {
	prefix := []byte(runDatePrefix + ":")
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	for i := offset; i < len(buf); i++ {
		buf[i] = 0xff
	}
	return buf
}
