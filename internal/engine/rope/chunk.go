package rope

import "unicode/utf8"

// Chunk size constants control the granularity of text storage, in bytes.
const (
	// MinChunkSize is the minimum bytes per chunk (except for the last chunk).
	MinChunkSize = 128

	// MaxChunkSize is the maximum bytes per chunk before splitting.
	MaxChunkSize = 256

	// TargetChunkSize is the preferred chunk size when building.
	TargetChunkSize = (MinChunkSize + MaxChunkSize) / 2
)

// Chunk is an immutable bounded string stored in a leaf.
type Chunk struct {
	data    string
	summary TextSummary
}

// NewChunk creates a chunk from a string, computing its summary eagerly.
func NewChunk(s string) Chunk {
	return Chunk{data: s, summary: ComputeSummary(s)}
}

// String returns the chunk's text.
func (c Chunk) String() string { return c.data }

// Summary returns the chunk's precomputed metrics.
func (c Chunk) Summary() TextSummary { return c.summary }

// Chars returns the number of characters in the chunk.
func (c Chunk) Chars() int { return c.summary.Chars }

// IsEmpty returns true if the chunk contains no text.
func (c Chunk) IsEmpty() bool { return len(c.data) == 0 }

// SplitChars splits the chunk before character offset n.
func (c Chunk) SplitChars(n int) (Chunk, Chunk) {
	if n <= 0 {
		return Chunk{}, c
	}
	if n >= c.summary.Chars {
		return c, Chunk{}
	}
	at := charToByte(c.data, n, c.summary.Flags)
	return NewChunk(c.data[:at]), NewChunk(c.data[at:])
}

// sliceChars returns the text of characters [from, to) of the chunk.
func (c Chunk) sliceChars(from, to int) string {
	start := charToByte(c.data, from, c.summary.Flags)
	end := start + charToByte(c.data[start:], to-from, c.summary.Flags)
	return c.data[start:end]
}

// splitIntoChunks splits a string into chunks of appropriate size.
func splitIntoChunks(s string) []Chunk {
	var chunks []Chunk
	for len(s) > MaxChunkSize {
		at := chunkBoundary(s, TargetChunkSize)
		chunks = append(chunks, NewChunk(s[:at]))
		s = s[at:]
	}
	if len(s) > 0 {
		chunks = append(chunks, NewChunk(s))
	}
	return chunks
}

// chunkBoundary picks a split point near target: just after a nearby newline
// if there is one, otherwise the closest rune start.
func chunkBoundary(s string, target int) int {
	lo := max(target-MinChunkSize/4, 1)
	hi := min(target+MinChunkSize/4, len(s))
	for i := target; i < hi; i++ {
		if s[i] == '\n' {
			return i + 1
		}
	}
	for i := target - 1; i >= lo; i-- {
		if s[i] == '\n' {
			return i + 1
		}
	}
	at := target
	for at > 0 && !utf8.RuneStart(s[at]) {
		at--
	}
	if at == 0 {
		// A pathological run of continuation bytes; fall forward instead.
		at = target
		for at < len(s) && !utf8.RuneStart(s[at]) {
			at++
		}
	}
	return at
}
