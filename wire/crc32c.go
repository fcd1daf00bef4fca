package wire

import "github.com/klauspost/crc32"

// castagnoliTable is computed once; klauspost/crc32 picks the SSE4.2/ARM64
// hardware path transparently when available, falling back to a
// slicing-by-8 software table otherwise.
var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the Castagnoli CRC32 checksum spec.md §6.1 mandates.
func CRC32C(b []byte) uint32 {
	return crc32.Checksum(b, castagnoliTable)
}
