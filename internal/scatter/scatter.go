// Package scatter implements the multi-radix counter walk that both the
// chunk encoder and chunk decoder use to find maximal linear runs between
// a chunk's own element ordering and its position inside the full array /
// requested sub-cube. Encoding and decoding are mirror images of the same
// walk — only which side of the run is source and which is destination
// differs — so the walk itself lives here once, parametrized by
// Geometry, and callers supply their own copy direction.
package scatter

// Geometry describes one chunk's placement within its parent array and
// within the destination sub-cube, one entry per dimension.
type Geometry struct {
	Dimensions     []uint64 // full array extents
	Chunks         []uint64 // chunk extents
	ReadOffset     []uint64 // sub-cube read start, in array coordinates
	ReadCount      []uint64 // sub-cube read length
	CubeOffset     []uint64 // where the sub-cube starts inside the destination buffer
	CubeDimensions []uint64 // destination buffer's full extents
}

// Layout is the per-chunk geometry resolved once per chunk index: the
// chunk's own element count, the length of its fastest-varying
// dimension (needed by the 2-D filters), whether the chunk overlaps the
// requested read at all, and the walk's starting (chunkOffset,
// cubeOffset, runLength) triple.
type Layout struct {
	LengthInChunk uint64
	LengthLast    uint64
	NoData        bool

	chunkOffset uint64
	cubeOffset  uint64
	runLength   uint64

	rollingMultiply uint64
	rollingChunkLen uint64
	rollingCubeLen  uint64
}

func divideRoundedUp(a, b uint64) uint64 {
	return (a + b - 1) / b
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// PlanChunk resolves a chunk's Layout: its element count, fastest
// dimension length, whether it has any overlap with the requested read,
// and the first (chunkOffset, cubeOffset, runLength) triple the walk
// should start from.
func (g *Geometry) PlanChunk(chunkIndex uint64) Layout {
	n := len(g.Dimensions)
	var l Layout
	l.rollingMultiply = 1
	l.rollingChunkLen = 1
	l.rollingCubeLen = 1
	linearRead := true
	linearReadCount := uint64(1)

	for fwd := 0; fwd < n; fwd++ {
		i := n - fwd - 1
		dimension := g.Dimensions[i]
		chunk := g.Chunks[i]
		readOffset := g.ReadOffset[i]
		readCount := g.ReadCount[i]
		cubeOffset := g.CubeOffset[i]
		cubeDimension := g.CubeDimensions[i]

		nChunksInDim := divideRoundedUp(dimension, chunk)
		c0 := (chunkIndex / l.rollingMultiply) % nChunksInDim
		chunkGlobalStart := c0 * chunk
		chunkGlobalEnd := minU64((c0+1)*chunk, dimension)
		length0 := chunkGlobalEnd - chunkGlobalStart
		clampedGlobalStart := maxU64(chunkGlobalStart, readOffset)
		clampedGlobalEnd := minU64(chunkGlobalEnd, readOffset+readCount)
		clampedLocalStart := clampedGlobalStart - c0*chunk
		lengthRead := clampedGlobalEnd - clampedGlobalStart

		if readOffset+readCount <= chunkGlobalStart || readOffset >= chunkGlobalEnd {
			l.NoData = true
		}

		if i == n-1 {
			l.LengthLast = length0
		}

		d0 := clampedLocalStart
		t0 := chunkGlobalStart - readOffset + d0
		q0 := t0 + cubeOffset

		l.chunkOffset += l.rollingChunkLen * d0
		l.cubeOffset += l.rollingCubeLen * q0

		fullyLinear := lengthRead == length0 && readCount == length0 && cubeDimension == length0
		if i == n-1 && !fullyLinear {
			linearReadCount = lengthRead
			linearRead = false
		}
		if linearRead && fullyLinear {
			linearReadCount *= length0
		} else {
			linearRead = false
		}

		l.rollingMultiply *= nChunksInDim
		l.rollingCubeLen *= cubeDimension
		l.rollingChunkLen *= length0
	}

	l.LengthInChunk = l.rollingChunkLen
	l.runLength = linearReadCount
	return l
}

// Walk visits every maximal linear run within the chunk, calling visit
// with the chunk-buffer element offset, the destination-cube element
// offset, and the run length (in elements). Runs are visited in the same
// slow-first order the format uses on both the encode and decode side.
func (g *Geometry) Walk(chunkIndex uint64, layout Layout, visit func(chunkOffset, cubeOffset, count uint64)) {
	if layout.NoData {
		return
	}
	n := len(g.Dimensions)
	d := int64(layout.chunkOffset)
	q := int64(layout.cubeOffset)
	runLength := int64(layout.runLength)

	for {
		visit(uint64(d), uint64(q), uint64(runLength))

		q += runLength - 1
		d += runLength - 1

		rollingMultiply := uint64(1)
		rollingCubeLen := uint64(1)
		rollingChunkLen := uint64(1)
		runLength = 1
		linearRead := true

		advanced := false
		for fwd := 0; fwd < n; fwd++ {
			i := n - fwd - 1
			dimension := g.Dimensions[i]
			chunk := g.Chunks[i]
			readOffset := g.ReadOffset[i]
			readCount := g.ReadCount[i]
			cubeDimension := g.CubeDimensions[i]

			nChunksInDim := divideRoundedUp(dimension, chunk)
			c0 := (chunkIndex / rollingMultiply) % nChunksInDim
			chunkGlobalStart := c0 * chunk
			chunkGlobalEnd := minU64((c0+1)*chunk, dimension)
			length0 := chunkGlobalEnd - chunkGlobalStart
			clampedGlobalStart := maxU64(chunkGlobalStart, readOffset)
			clampedGlobalEnd := minU64(chunkGlobalEnd, readOffset+readCount)
			clampedLocalEnd := clampedGlobalEnd - chunkGlobalStart
			lengthRead := clampedGlobalEnd - clampedGlobalStart

			d += int64(rollingChunkLen)
			q += int64(rollingCubeLen)

			fullyLinear := lengthRead == length0 && readCount == length0 && cubeDimension == length0
			if i == n-1 && !fullyLinear {
				runLength = int64(lengthRead)
				linearRead = false
			}
			if linearRead && fullyLinear {
				runLength *= int64(length0)
			} else {
				linearRead = false
			}

			d0 := (uint64(d) / rollingChunkLen) % length0
			if d0 != clampedLocalEnd && d0 != 0 {
				advanced = true
				break
			}

			d -= int64(lengthRead * rollingChunkLen)
			q -= int64(lengthRead * rollingCubeLen)

			rollingMultiply *= nChunksInDim
			rollingCubeLen *= cubeDimension
			rollingChunkLen *= length0

			if i == 0 {
				return
			}
		}
		if !advanced {
			return
		}
	}
}
