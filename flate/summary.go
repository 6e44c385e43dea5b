package flate

import "hash/crc32"

// A Summary describes the uncompressed side of a stream: the input of a
// Writer, or the output of a Reader. A container format compares it
// against its trailer.
type Summary struct {
	Count int64
	CRC32 uint32
}

func (s *Summary) update(p []byte) {
	s.Count += int64(len(p))
	s.CRC32 = crc32.Update(s.CRC32, crc32.IEEETable, p)
}
