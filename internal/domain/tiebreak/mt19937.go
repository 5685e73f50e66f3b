package tiebreak

import (
	"math/big"
	"math/bits"
)

// MT19937 parameters (Matsumoto & Nishimura, 1998).
const (
	mtN         = 624
	mtM         = 397
	mtMatrixA   = 0x9908b0df
	mtUpperMask = 0x80000000
	mtLowerMask = 0x7fffffff
)

// mt19937 is the 32-bit Mersenne Twister. Seeding follows init_by_array from
// the reference implementation with the key built the way CPython's
// random.seed(int) builds it, so a given seed yields the same stream here and
// in a Python interpreter.
type mt19937 struct {
	mt  [mtN]uint32
	mti int
}

func newMT19937(seed *big.Int) *mt19937 {
	m := &mt19937{}
	m.seedByArray(seedKey(seed))
	return m
}

// seedKey splits |seed| into 32-bit words, least significant first.
func seedKey(seed *big.Int) []uint32 {
	n := new(big.Int).Abs(seed)
	if n.Sign() == 0 {
		return []uint32{0}
	}
	b := n.Bytes() // big-endian
	key := make([]uint32, 0, (len(b)+3)/4)
	for end := len(b); end > 0; end -= 4 {
		start := end - 4
		if start < 0 {
			start = 0
		}
		var w uint32
		for _, c := range b[start:end] {
			w = w<<8 | uint32(c)
		}
		key = append(key, w)
	}
	return key
}

func (m *mt19937) seed(s uint32) {
	m.mt[0] = s
	for i := 1; i < mtN; i++ {
		m.mt[i] = 1812433253*(m.mt[i-1]^(m.mt[i-1]>>30)) + uint32(i)
	}
	m.mti = mtN
}

func (m *mt19937) seedByArray(key []uint32) {
	m.seed(19650218)
	i, j := 1, 0
	k := mtN
	if len(key) > k {
		k = len(key)
	}
	for ; k > 0; k-- {
		m.mt[i] = (m.mt[i] ^ ((m.mt[i-1] ^ (m.mt[i-1] >> 30)) * 1664525)) + key[j] + uint32(j)
		i++
		j++
		if i >= mtN {
			m.mt[0] = m.mt[mtN-1]
			i = 1
		}
		if j >= len(key) {
			j = 0
		}
	}
	for k = mtN - 1; k > 0; k-- {
		m.mt[i] = (m.mt[i] ^ ((m.mt[i-1] ^ (m.mt[i-1] >> 30)) * 1566083941)) - uint32(i)
		i++
		if i >= mtN {
			m.mt[0] = m.mt[mtN-1]
			i = 1
		}
	}
	m.mt[0] = 0x80000000
}

func (m *mt19937) generate() {
	mag01 := [2]uint32{0, mtMatrixA}
	var kk int
	for kk = 0; kk < mtN-mtM; kk++ {
		y := (m.mt[kk] & mtUpperMask) | (m.mt[kk+1] & mtLowerMask)
		m.mt[kk] = m.mt[kk+mtM] ^ (y >> 1) ^ mag01[y&1]
	}
	for ; kk < mtN-1; kk++ {
		y := (m.mt[kk] & mtUpperMask) | (m.mt[kk+1] & mtLowerMask)
		m.mt[kk] = m.mt[kk+mtM-mtN] ^ (y >> 1) ^ mag01[y&1]
	}
	y := (m.mt[mtN-1] & mtUpperMask) | (m.mt[0] & mtLowerMask)
	m.mt[mtN-1] = m.mt[mtM-1] ^ (y >> 1) ^ mag01[y&1]
	m.mti = 0
}

// Uint32 returns the next tempered output word.
func (m *mt19937) Uint32() uint32 {
	if m.mti >= mtN {
		m.generate()
	}
	y := m.mt[m.mti]
	m.mti++
	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

// topBits returns the top k bits of the next word, 0 < k <= 32.
func (m *mt19937) topBits(k int) uint32 {
	return m.Uint32() >> (32 - k)
}

// below returns a uniform value in [0, n) by drawing bitlen(n) bits and
// rejecting values >= n. n must be in [1, 2^31].
func (m *mt19937) below(n int) int {
	k := bits.Len(uint(n))
	r := m.topBits(k)
	for int(r) >= n {
		r = m.topBits(k)
	}
	return int(r)
}
