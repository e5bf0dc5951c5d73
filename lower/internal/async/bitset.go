package async

import "math/bits"

// BitSet is a set of variable ids. The hoister keeps one for hoisted slots
// and one for captured locals that live in cells.
type BitSet struct {
	words []uint64
}

// NewBitSet creates a set sized for ids up to maxVal.
func NewBitSet(maxVal int) *BitSet {
	return &BitSet{words: make([]uint64, maxVal/64+1)}
}

// Set adds id, growing the set when needed.
func (b *BitSet) Set(id uint32) {
	w := int(id / 64)
	if w >= len(b.words) {
		b.words = append(b.words, make([]uint64, w+1-len(b.words))...)
	}
	b.words[w] |= 1 << (id % 64)
}

// Has reports whether id is in the set.
func (b *BitSet) Has(id uint32) bool {
	w := int(id / 64)
	return w < len(b.words) && b.words[w]&(1<<(id%64)) != 0
}

// Union adds the ids of other.
func (b *BitSet) Union(other *BitSet) {
	if n := len(other.words); n > len(b.words) {
		b.words = append(b.words, make([]uint64, n-len(b.words))...)
	}
	for i, w := range other.words {
		b.words[i] |= w
	}
}

// ToSlice returns the ids in ascending order.
func (b *BitSet) ToSlice() []uint32 {
	out := make([]uint32, 0, b.Count())
	for i, w := range b.words {
		for w != 0 {
			out = append(out, uint32(i*64+bits.TrailingZeros64(w)))
			w &= w - 1
		}
	}
	return out
}

// Count returns the number of ids in the set.
func (b *BitSet) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}
