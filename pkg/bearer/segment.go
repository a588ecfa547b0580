package bearer

// SegmentCount returns the number of writes needed to carry n bytes in
// segments of at most size bytes. A size below 1 is treated as 1.
func SegmentCount(n, size int) int {
	if n <= 0 {
		return 0
	}
	if size < 1 {
		size = 1
	}
	return (n + size - 1) / size
}

// Segment splits pdu into consecutive segments of at most size bytes,
// preserving order. The segments share pdu's backing array.
func Segment(pdu []byte, size int) [][]byte {
	if size < 1 {
		size = 1
	}
	segments := make([][]byte, 0, SegmentCount(len(pdu), size))
	for len(pdu) > 0 {
		n := min(size, len(pdu))
		segments = append(segments, pdu[:n:n])
		pdu = pdu[n:]
	}
	return segments
}
