// Package planner implements the chunk-range enumeration and I/O
// coalescing algorithm that turns a requested sub-cube read into a
// minimal sequence of LUT reads and data reads. The dimensional
// bookkeeping (chunk counts, per-axis chunk indices) is shared between
// the index-read and data-read passes, but the two run independently:
// the caller drives index reads first to materialize the LUT offsets it
// needs, then drives data reads using those offsets.
package planner

// Range is an inclusive-lower, exclusive-upper bound over a linearized
// chunk index space — mirrors the original decoder's lowerBound/upperBound
// pair.
type Range struct {
	Lower uint64
	Upper uint64
}

// Config holds the dimensional geometry and I/O tuning knobs needed to
// plan reads for one array variable.
type Config struct {
	Dimensions []uint64 // full array extents, one per axis
	Chunks     []uint64 // chunk extents, one per axis
	ReadOffset []uint64 // sub-cube read start, one per axis
	ReadCount  []uint64 // sub-cube read length, one per axis

	// LUTChunkElementCount is lut.ChunkCount for a v3 bitpacked LUT, or 1
	// for a legacy flat-array LUT (no block alignment).
	LUTChunkElementCount uint64
	// LUTChunkLength is the byte length of one compressed LUT block (v3).
	// A value of 0 or 1 selects the legacy flat layout instead: one raw
	// uint64 per entry, chunk 0's start offset implicit (zero, not stored),
	// and chunk payloads starting at LUTStart + NumberOfChunks()*8.
	LUTChunkLength uint64
	// LUTStart is the absolute byte offset of the LUT's first byte.
	LUTStart uint64

	IOSizeMerge uint64
	IOSizeMax   uint64
}

func divideRoundedUp(a, b uint64) uint64 {
	return (a + b - 1) / b
}

// NumberOfChunks returns the total chunk count across all dimensions.
func (c *Config) NumberOfChunks() uint64 {
	n := uint64(1)
	for i := range c.Dimensions {
		n *= divideRoundedUp(c.Dimensions[i], c.Chunks[i])
	}
	return n
}

// InitialChunkRange computes the linearized [lower, upper) chunk index
// range that the requested sub-cube touches, before any per-dimension
// splitting.
func (c *Config) InitialChunkRange() Range {
	chunkStart := uint64(0)
	chunkEnd := uint64(1)

	for i := range c.Dimensions {
		dimension := c.Dimensions[i]
		chunk := c.Chunks[i]
		readOffset := c.ReadOffset[i]
		readCount := c.ReadCount[i]

		lower := readOffset / chunk
		upper := divideRoundedUp(readOffset+readCount, chunk)
		count := upper - lower

		nChunksInDim := divideRoundedUp(dimension, chunk)

		chunkStart = chunkStart*nChunksInDim + lower
		if readCount == dimension {
			chunkEnd *= nChunksInDim
		} else {
			chunkEnd = chunkStart + count
		}
	}

	return Range{Lower: chunkStart, Upper: chunkEnd}
}

// NextChunkPosition advances chunkIndex, the run just visited, to the next
// linearly-reachable chunk range, stepping on from that run's last chunk
// (Upper-1) and walking dimensions slow-first (row-major, outermost
// dimension varies slowest) so that fully-covered trailing dimensions
// collapse into one long linear run. Returns false once every chunk in
// the requested sub-cube has been visited.
func (c *Config) NextChunkPosition(chunkIndex *Range) bool {
	chunkIndex.Lower = chunkIndex.Upper - 1
	rollingMultiply := uint64(1)
	linearReadCount := uint64(1)
	linearRead := true
	n := len(c.Dimensions)

	for fwd := 0; fwd < n; fwd++ {
		i := n - fwd - 1
		dimension := c.Dimensions[i]
		chunk := c.Chunks[i]
		readOffset := c.ReadOffset[i]
		readCount := c.ReadCount[i]

		nChunksInDim := divideRoundedUp(dimension, chunk)

		lower := readOffset / chunk
		upper := divideRoundedUp(readOffset+readCount, chunk)
		count := upper - lower

		chunkIndex.Lower += rollingMultiply

		if i == n-1 && dimension != readCount {
			linearReadCount = count
			linearRead = false
		}

		if linearRead && dimension == readCount {
			linearReadCount *= nChunksInDim
		} else {
			linearRead = false
		}

		c0 := (chunkIndex.Lower / rollingMultiply) % nChunksInDim

		if c0 != upper && c0 != 0 {
			break
		}

		chunkIndex.Lower -= count * rollingMultiply
		rollingMultiply *= nChunksInDim

		if i == 0 {
			chunkIndex.Upper = chunkIndex.Lower
			return false
		}
	}

	chunkIndex.Upper = chunkIndex.Lower + linearReadCount
	return true
}

// IndexRead describes one planned read of LUT bytes, plus the chunk
// range it resolves offsets for.
type IndexRead struct {
	Offset     uint64
	Count      uint64
	ChunkIndex Range // the chunk range this read's LUT bytes cover
	IndexRange Range // cumulative chunk range read so far
	NextChunk  Range // remaining chunk range still to plan
}

// InitIndexRead seeds an IndexRead at the start of planning.
func (c *Config) InitIndexRead() IndexRead {
	return IndexRead{NextChunk: c.InitialChunkRange()}
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

// NextIndexRead coalesces consecutive chunk-position advances into one
// LUT read as long as the combined read stays within IOSizeMax and
// consecutive reads stay within IOSizeMerge of each other. Returns false
// once no chunk range remains.
func (c *Config) NextIndexRead(r *IndexRead) bool {
	if r.NextChunk.Lower >= r.NextChunk.Upper {
		return false
	}

	r.ChunkIndex = r.NextChunk
	r.IndexRange.Lower = r.NextChunk.Lower
	chunkIndex := r.NextChunk.Lower

	isV3LUT := c.LUTChunkLength > 1
	lutChunkElementCount := c.LUTChunkElementCount
	lutChunkLength := c.LUTChunkLength
	if !isV3LUT {
		lutChunkElementCount = 1
		lutChunkLength = 8
	}

	alignOffset := uint64(0)
	if !isV3LUT && r.IndexRange.Lower != 0 {
		alignOffset = 1
	}
	endAlignOffset := uint64(0)
	if isV3LUT {
		endAlignOffset = 1
	}

	readStart := (r.NextChunk.Lower - alignOffset) / lutChunkElementCount * lutChunkLength

	for {
		maxRead := c.IOSizeMax / lutChunkLength * lutChunkElementCount
		nextChunkCount := r.NextChunk.Upper - r.NextChunk.Lower
		nextIncrement := maxU64(1, minU64(maxRead-1, nextChunkCount-1))

		if r.NextChunk.Lower+nextIncrement >= r.NextChunk.Upper {
			if !c.NextChunkPosition(&r.NextChunk) {
				break
			}
			readEndNext := (r.NextChunk.Lower + endAlignOffset) / lutChunkElementCount * lutChunkLength
			readStartNext := readEndNext - lutChunkLength
			readEndPrevious := chunkIndex / lutChunkElementCount * lutChunkLength

			if readEndNext-readStart > c.IOSizeMax {
				break
			}
			if readStartNext-readEndPrevious > c.IOSizeMerge {
				break
			}
		} else {
			readEndNext := (r.NextChunk.Lower + nextIncrement + endAlignOffset) / lutChunkElementCount * lutChunkLength
			if readEndNext-readStart > c.IOSizeMax {
				r.NextChunk.Lower++
				break
			}
			r.NextChunk.Lower += nextIncrement
		}
		chunkIndex = r.NextChunk.Lower
	}

	readEnd := ((chunkIndex+endAlignOffset)/lutChunkElementCount + 1) * lutChunkLength

	r.Offset = c.LUTStart + readStart
	r.Count = readEnd - readStart
	r.IndexRange.Upper = chunkIndex + 1
	return true
}

// DataRead describes one planned read of compressed chunk bytes.
type DataRead struct {
	Offset     uint64
	Count      uint64
	ChunkIndex Range
	IndexRange Range
	NextChunk  Range
}

// InitDataRead seeds a DataRead from a completed IndexRead, ready for
// repeated NextDataRead calls driven by that index read's resolved LUT
// offsets.
func InitDataRead(index IndexRead) DataRead {
	return DataRead{
		IndexRange: index.IndexRange,
		NextChunk:  index.ChunkIndex,
	}
}

// LUTLookup resolves a chunk index to its LUT offset, scoped to the
// entries present in one IndexRead's resolved bytes. Callers decode the
// relevant LUT block(s) with package lut and supply a lookup closure
// here rather than handing this package raw compressed bytes, keeping it
// independent of the LUT wire format.
type LUTLookup func(chunkIndex uint64) (uint64, error)

// NextDataRead coalesces consecutive chunks into one data read as long
// as the combined byte span stays within IOSizeMax and the bytes the next
// chunk would add past the current read's end (any gap plus the chunk
// itself) stay within IOSizeMerge. lookup must resolve the
// LUT offset for any chunk index between IndexRange.Lower and
// IndexRange.Upper inclusive (the format's LUT entry n_chunks+1 gives the
// trailing chunk's end offset).
func (c *Config) NextDataRead(r *DataRead, lookup LUTLookup) (bool, error) {
	if r.NextChunk.Lower >= r.NextChunk.Upper {
		return false, nil
	}

	chunkIndex := r.NextChunk.Lower
	r.ChunkIndex.Lower = chunkIndex

	startPos, err := lookup(chunkIndex)
	if err != nil {
		return false, err
	}
	endPos := startPos

	for {
		dataEndPos, err := lookup(r.NextChunk.Lower + 1)
		if err != nil {
			return false, err
		}

		if startPos != endPos && (dataEndPos-startPos > c.IOSizeMax || dataEndPos-endPos > c.IOSizeMerge) {
			break
		}
		endPos = dataEndPos
		chunkIndex = r.NextChunk.Lower

		if chunkIndex+1 >= r.NextChunk.Upper {
			if !c.NextChunkPosition(&r.NextChunk) {
				break
			}
		} else {
			r.NextChunk.Lower++
		}

		if r.NextChunk.Lower >= r.IndexRange.Upper {
			r.NextChunk = Range{}
			break
		}
	}

	r.Offset = startPos
	r.Count = endPos - startPos
	r.ChunkIndex.Upper = chunkIndex + 1
	return true, nil
}
