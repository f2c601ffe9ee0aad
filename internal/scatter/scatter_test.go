package scatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// collectRuns walks every run for a given chunk and returns the total
// element count visited, for comparing against the chunk's planned
// LengthInChunk / overlap-with-read element count.
func collectRuns(g *Geometry, chunkIndex uint64) (runs int, total uint64) {
	layout := g.PlanChunk(chunkIndex)
	g.Walk(chunkIndex, layout, func(chunkOffset, cubeOffset, count uint64) {
		runs++
		total += count
	})
	return runs, total
}

func TestWalkCoversWholeChunkOnFullRead(t *testing.T) {
	g := &Geometry{
		Dimensions:     []uint64{4, 4},
		Chunks:         []uint64{2, 2},
		ReadOffset:     []uint64{0, 0},
		ReadCount:      []uint64{4, 4},
		CubeOffset:     []uint64{0, 0},
		CubeDimensions: []uint64{4, 4},
	}

	for chunkIndex := uint64(0); chunkIndex < 4; chunkIndex++ {
		layout := g.PlanChunk(chunkIndex)
		require.False(t, layout.NoData)
		require.Equal(t, uint64(4), layout.LengthInChunk)
		_, total := collectRuns(g, chunkIndex)
		require.Equal(t, layout.LengthInChunk, total)
	}
}

func TestWalkSkipsChunkOutsideReadWindow(t *testing.T) {
	g := &Geometry{
		Dimensions:     []uint64{4, 4},
		Chunks:         []uint64{2, 2},
		ReadOffset:     []uint64{0, 0},
		ReadCount:      []uint64{2, 2}, // only the first chunk's worth
		CubeOffset:     []uint64{0, 0},
		CubeDimensions: []uint64{2, 2},
	}

	layout := g.PlanChunk(3) // last chunk, fully outside the read window
	require.True(t, layout.NoData)
	runs, total := collectRuns(g, 3)
	require.Equal(t, 0, runs)
	require.Equal(t, uint64(0), total)
}

func TestWalkPartialOverlapRunCount(t *testing.T) {
	// A 1x10 array in chunks of 1x4, reading columns [2,8) (count=6):
	// chunk 0 covers [0,4) (overlap [2,4)), chunk 1 covers [4,8) (fully
	// inside), chunk 2 covers [8,10) (no overlap).
	g := &Geometry{
		Dimensions:     []uint64{1, 10},
		Chunks:         []uint64{1, 4},
		ReadOffset:     []uint64{0, 2},
		ReadCount:      []uint64{1, 6},
		CubeOffset:     []uint64{0, 0},
		CubeDimensions: []uint64{1, 6},
	}

	layout0 := g.PlanChunk(0)
	require.False(t, layout0.NoData)
	_, total0 := collectRuns(g, 0)
	require.Equal(t, uint64(2), total0)

	layout1 := g.PlanChunk(1)
	require.False(t, layout1.NoData)
	_, total1 := collectRuns(g, 1)
	require.Equal(t, uint64(4), total1)

	layout2 := g.PlanChunk(2)
	require.True(t, layout2.NoData)
}

func TestWalkWritesExpectedCubeOffsets(t *testing.T) {
	// A 1x10 array, chunk 1x4, reading [2,8) into a destination cube that
	// itself starts at offset 5.
	g := &Geometry{
		Dimensions:     []uint64{1, 10},
		Chunks:         []uint64{1, 4},
		ReadOffset:     []uint64{0, 2},
		ReadCount:      []uint64{1, 6},
		CubeOffset:     []uint64{0, 5},
		CubeDimensions: []uint64{1, 11},
	}

	var cubeOffsets []uint64
	layout := g.PlanChunk(0)
	g.Walk(0, layout, func(chunkOffset, cubeOffset, count uint64) {
		for i := uint64(0); i < count; i++ {
			cubeOffsets = append(cubeOffsets, cubeOffset+i)
		}
	})
	// chunk 0 holds array columns [0,4), overlap with read is [2,4),
	// which lands at cube offsets [5, 7) (cubeOffset 5 + (readStart-readOffset)).
	require.Equal(t, []uint64{5, 6}, cubeOffsets)
}
