package buffer

// Buffer hosts unrelated byte sequences (segments) in a single growing slice, up to a
// limit. A segment may be written in several appends and is sealed by Finish. Sealed
// segments stay valid until Clear, even if the underlying slice gets reallocated.
type Buffer struct {
	memory  []byte
	begin   int
	maxSize int
}

func New(initialSize, maxSize int) *Buffer {
	return &Buffer{
		memory:  make([]byte, 0, initialSize),
		maxSize: maxSize,
	}
}

// Append writes data into the current segment. Nothing is written and false is returned
// if the limit would be exceeded.
func (b *Buffer) Append(data []byte) (ok bool) {
	if len(b.memory)+len(data) > b.maxSize {
		return false
	}

	b.memory = append(b.memory, data...)
	return true
}

// SegmentLength returns the length of the current segment.
func (b *Buffer) SegmentLength() int {
	return len(b.memory) - b.begin
}

// Finish seals the current segment and returns it.
func (b *Buffer) Finish() []byte {
	segment := b.memory[b.begin:len(b.memory):len(b.memory)]
	b.begin = len(b.memory)

	return segment
}

// Clear drops all the segments. The memory is reused, so they must not be used anymore.
func (b *Buffer) Clear() {
	b.begin = 0
	b.memory = b.memory[:0]
}
