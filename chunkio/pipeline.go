package chunkio

import (
	"github.com/gridcube/omfile/endian"
	"github.com/gridcube/omfile/errs"
	"github.com/gridcube/omfile/format"
	"github.com/gridcube/omfile/internal/scatter"
	"github.com/gridcube/omfile/lut"
	"github.com/gridcube/omfile/planner"
)

// Encoder drives the encoder chunk pipeline over a whole array variable's
// dimensional geometry: for each chunk it gathers the chunk's element run
// out of a source cube via internal/scatter, then hands the gathered
// bytes to a ChunkCodec for the scale -> filter -> entropy-encode
// sequence, accumulating the cumulative LUT the caller writes alongside
// the encoded chunk stream.
type Encoder struct {
	dims   []uint64
	chunks []uint64
	codec  *ChunkCodec
}

// NewEncoder validates dims/chunks per the rules every encoder and
// decoder construction applies (every dim[i] > 0, every chunk[i] in
// [1, dim[i]]) and builds the ChunkCodec for dataType/compression.
func NewEncoder(dims, chunks []uint64, dataType format.DataType, compression format.Compression, opts ...ChunkCodecOption) (*Encoder, error) {
	if err := validateDimensions(dims, chunks); err != nil {
		return nil, err
	}
	codec, err := NewChunkCodec(dataType, compression, opts...)
	if err != nil {
		return nil, err
	}
	return &Encoder{dims: dims, chunks: chunks, codec: codec}, nil
}

func (e *Encoder) chunkVolume() uint64 {
	v := uint64(1)
	for _, c := range e.chunks {
		v *= c
	}
	return v
}

// EncodeAll encodes every chunk of src, the full array laid out in
// row-major native element order, as a single contiguous source cube.
func (e *Encoder) EncodeAll(src, dst []byte) ([]uint64, error) {
	offset := zeros(len(e.dims))
	return e.EncodeSubCube(offset, e.dims, offset, e.dims, src, dst)
}

// EncodeSubCube encodes every chunk touching [readOffset, readOffset+readCount)
// gathered out of src, which is addressed as a cube of shape
// cubeDimensions with the request starting at cubeOffset — mirroring the
// decoder's scatter so a partial write and a partial read share the same
// geometry logic, only gather and scatter swap roles. It returns the
// cumulative LUT: one byte offset more than the number of chunks encoded
// (starting at 0), the last one equal to the
// total compressed length written to dst.
func (e *Encoder) EncodeSubCube(readOffset, readCount, cubeOffset, cubeDimensions []uint64, src, dst []byte) ([]uint64, error) {
	if err := validateReadWindow(e.dims, readOffset, readCount); err != nil {
		return nil, err
	}
	if err := validateCubeOffset(cubeOffset, cubeDimensions, readCount); err != nil {
		return nil, err
	}

	geom := &scatter.Geometry{
		Dimensions:     e.dims,
		Chunks:         e.chunks,
		ReadOffset:     readOffset,
		ReadCount:      readCount,
		CubeOffset:     cubeOffset,
		CubeDimensions: cubeDimensions,
	}
	cfg := planner.Config{Dimensions: e.dims, Chunks: e.chunks, ReadOffset: readOffset, ReadCount: readCount}

	width := e.codec.nativeWidth
	scratch := make([]byte, e.chunkVolume()*uint64(width))
	lutOffsets := []uint64{0}
	pos := 0

	chunkRange := cfg.InitialChunkRange()
	for r := chunkRange; ; {
		for idx := r.Lower; idx < r.Upper; idx++ {
			layout := geom.PlanChunk(idx)
			chunkBytes := layout.LengthInChunk * uint64(width)
			if !layout.NoData {
				for i := range scratch[:chunkBytes] {
					scratch[i] = 0
				}
				geom.Walk(idx, layout, func(chunkOffset, cubeOff, count uint64) {
					n := count * uint64(width)
					copy(scratch[chunkOffset*uint64(width):], src[cubeOff*uint64(width):cubeOff*uint64(width)+n])
				})
			}

			rows := int(layout.LengthInChunk / layout.LengthLast)
			m, err := e.codec.EncodeChunk(rows, int(layout.LengthLast), scratch, dst[pos:])
			if err != nil {
				return nil, err
			}
			pos += m
			lutOffsets = append(lutOffsets, uint64(pos))
		}
		if !cfg.NextChunkPosition(&r) {
			break
		}
	}
	return lutOffsets, nil
}

// Decoder drives the decoder chunk pipeline: it resolves a chunk's
// compressed byte span through a planner.LUTLookup (backed by a decoded
// LUT block from package lut), entropy-decodes and inverse-filters it
// through a ChunkCodec, then scatters the result into the caller's output
// cube via internal/scatter — skipping the scatter step entirely for
// chunks the planner's own I/O coalescing pulled in but that lie fully
// outside the request.
type Decoder struct {
	dims   []uint64
	chunks []uint64
	codec  *ChunkCodec
}

// NewDecoder validates dims/chunks and builds the ChunkCodec for
// dataType/compression, exactly as NewEncoder.
func NewDecoder(dims, chunks []uint64, dataType format.DataType, compression format.Compression, opts ...ChunkCodecOption) (*Decoder, error) {
	if err := validateDimensions(dims, chunks); err != nil {
		return nil, err
	}
	codec, err := NewChunkCodec(dataType, compression, opts...)
	if err != nil {
		return nil, err
	}
	return &Decoder{dims: dims, chunks: chunks, codec: codec}, nil
}

func (d *Decoder) chunkVolume() uint64 {
	v := uint64(1)
	for _, c := range d.chunks {
		v *= c
	}
	return v
}

// FetchFunc retrieves exactly count bytes starting at absolute file
// offset offset. The decoder performs no I/O itself (the core is
// synchronous and stateless across calls); callers wire this to whatever
// storage backs the file.
type FetchFunc func(offset, count uint64) ([]byte, error)

// DecodeChunks decodes every chunk in [r.ChunkIndex.Lower, r.ChunkIndex.Upper),
// one completed planner.DataRead's worth of chunks, out of spanData
// (spanData[0] corresponds to absolute file offset r.Offset) and scatters
// the result into dst, addressed as cubeDimensions with the request
// starting at cubeOffset. It returns the number of bytes consumed from
// spanData; a mismatch against r.Count is corruption
// (errs.ErrDeflatedSizeMismatch), matching the decoder's enclosing driver
// accounting in the original chunk-decode loop.
func (d *Decoder) DecodeChunks(r planner.DataRead, spanData []byte, readOffset, readCount, cubeOffset, cubeDimensions []uint64, dst []byte, lookup planner.LUTLookup) (int, error) {
	if err := validateCubeOffset(cubeOffset, cubeDimensions, readCount); err != nil {
		return 0, err
	}

	geom := &scatter.Geometry{
		Dimensions:     d.dims,
		Chunks:         d.chunks,
		ReadOffset:     readOffset,
		ReadCount:      readCount,
		CubeOffset:     cubeOffset,
		CubeDimensions: cubeDimensions,
	}

	width := d.codec.nativeWidth
	scratch := make([]byte, d.chunkVolume()*uint64(width))
	consumed := 0

	for idx := r.ChunkIndex.Lower; idx < r.ChunkIndex.Upper; idx++ {
		startPos, err := lookup(idx)
		if err != nil {
			return consumed, err
		}
		endPos, err := lookup(idx + 1)
		if err != nil {
			return consumed, err
		}
		if startPos < r.Offset || endPos > r.Offset+uint64(len(spanData)) || endPos < startPos {
			return consumed, errs.ErrOutOfBoundRead
		}
		compressed := spanData[startPos-r.Offset : endPos-r.Offset]
		consumed += len(compressed)

		layout := geom.PlanChunk(idx)
		rows := int(layout.LengthInChunk / layout.LengthLast)
		if err := d.codec.DecodeChunk(rows, int(layout.LengthLast), compressed, scratch); err != nil {
			return consumed, err
		}
		if layout.NoData {
			continue
		}
		geom.Walk(idx, layout, func(chunkOffset, cubeOff, count uint64) {
			n := count * uint64(width)
			copy(dst[cubeOff*uint64(width):], scratch[chunkOffset*uint64(width):chunkOffset*uint64(width)+n])
		})
	}

	if uint64(consumed) != r.Count {
		return consumed, errs.ErrDeflatedSizeMismatch
	}
	return consumed, nil
}

// DecodeRequest plans and executes a full sub-cube decode end to end: it
// drives cfg's index-read and data-read coalescing (planner.NextIndexRead
// and planner.NextDataRead), fetching LUT and chunk bytes through fetch,
// decoding each resolved LUT block with package lut (or the legacy flat
// layout, selected by cfg.LUTChunkLength), and scattering every decoded
// chunk into dst via DecodeChunks.
func (d *Decoder) DecodeRequest(cfg planner.Config, fetch FetchFunc, cubeOffset, cubeDimensions []uint64, dst []byte) error {
	if err := validateReadWindow(d.dims, cfg.ReadOffset, cfg.ReadCount); err != nil {
		return err
	}
	if err := validateCubeOffset(cubeOffset, cubeDimensions, cfg.ReadCount); err != nil {
		return err
	}

	indexRead := cfg.InitIndexRead()
	for cfg.NextIndexRead(&indexRead) {
		lutBytes, err := fetch(indexRead.Offset, indexRead.Count)
		if err != nil {
			return err
		}
		lookup, err := buildLUTLookup(cfg, indexRead, lutBytes)
		if err != nil {
			return err
		}

		dataRead := planner.InitDataRead(indexRead)
		for {
			ok, err := cfg.NextDataRead(&dataRead, lookup)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			spanData, err := fetch(dataRead.Offset, dataRead.Count)
			if err != nil {
				return err
			}
			if _, err := d.DecodeChunks(dataRead, spanData, cfg.ReadOffset, cfg.ReadCount, cubeOffset, cubeDimensions, dst, lookup); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildLUTLookup decodes the LUT bytes one completed IndexRead resolved
// into a planner.LUTLookup closure scoped to that read's chunk range. v3
// LUTs are bitpacked blocks (package lut); legacy LUTs are a flat u64
// array with an implicit leading zero at chunk 0, offset from the
// chunk-payload base (LUTStart + n_chunks*8, per the legacy layout
// documented on planner.Config).
func buildLUTLookup(cfg planner.Config, r planner.IndexRead, data []byte) (planner.LUTLookup, error) {
	isV3 := cfg.LUTChunkLength > 1
	if !isV3 {
		dataBase := cfg.LUTStart + cfg.NumberOfChunks()*8
		legacyBase := uint64(0)
		if r.ChunkIndex.Lower > 0 {
			legacyBase = r.ChunkIndex.Lower - 1
		}
		return func(chunkIndex uint64) (uint64, error) {
			if chunkIndex == 0 {
				return dataBase, nil
			}
			word := chunkIndex - 1 - legacyBase
			off := word * 8
			if off+8 > uint64(len(data)) {
				return 0, errs.ErrOutOfBoundRead
			}
			return dataBase + endian.Engine.Uint64(data[off:]), nil
		}, nil
	}

	blockLen := cfg.LUTChunkLength
	if blockLen == 0 || uint64(len(data))%blockLen != 0 {
		return nil, errs.ErrOutOfBoundRead
	}
	nBlocks := uint64(len(data)) / blockLen
	blockBase := r.ChunkIndex.Lower / cfg.LUTChunkElementCount
	offsets, err := lut.Decode(data, int(nBlocks*cfg.LUTChunkElementCount))
	if err != nil {
		return nil, err
	}
	return func(chunkIndex uint64) (uint64, error) {
		block := chunkIndex / cfg.LUTChunkElementCount
		idx := (block-blockBase)*cfg.LUTChunkElementCount + chunkIndex%cfg.LUTChunkElementCount
		if idx >= uint64(len(offsets)) {
			return 0, errs.ErrOutOfBoundRead
		}
		return offsets[idx], nil
	}, nil
}

func zeros(n int) []uint64 { return make([]uint64, n) }

// validateDimensions applies the input validation every encoder and
// decoder construction must perform: every dim[i] > 0, every chunk[i] in
// [1, dim[i]].
func validateDimensions(dims, chunks []uint64) error {
	if len(dims) == 0 || len(dims) != len(chunks) {
		return errs.ErrInvalidDimensions
	}
	for i, dim := range dims {
		if dim == 0 {
			return errs.ErrInvalidDimensions
		}
		chunk := chunks[i]
		if chunk < 1 || chunk > dim {
			return errs.ErrInvalidChunkDimensions
		}
	}
	return nil
}

// validateReadWindow checks a requested sub-cube [readOffset, readOffset+readCount)
// lies within dims.
func validateReadWindow(dims, readOffset, readCount []uint64) error {
	if len(readOffset) != len(dims) {
		return errs.ErrInvalidReadOffset
	}
	if len(readCount) != len(dims) {
		return errs.ErrInvalidReadCount
	}
	for i, dim := range dims {
		if readOffset[i] >= dim {
			return errs.ErrInvalidReadOffset
		}
		if readCount[i] == 0 || readOffset[i]+readCount[i] > dim {
			return errs.ErrInvalidReadCount
		}
	}
	return nil
}

// validateCubeOffset checks that a sub-cube request placed at cubeOffset
// fits within cubeDimensions.
func validateCubeOffset(cubeOffset, cubeDimensions, readCount []uint64) error {
	if len(cubeOffset) != len(readCount) || len(cubeDimensions) != len(readCount) {
		return errs.ErrInvalidCubeOffset
	}
	for i := range readCount {
		if cubeOffset[i]+readCount[i] > cubeDimensions[i] {
			return errs.ErrInvalidCubeOffset
		}
	}
	return nil
}
