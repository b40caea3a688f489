package wasmcompile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitPushChunksSingleByteFirstChunkAbsorbsRemainder(t *testing.T) {
	chunks := splitPushChunks([]byte{0x01})
	require.Equal(t, []int64{1}, chunks)
}

func TestSplitPushChunksExactlyEightBytes(t *testing.T) {
	immed := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	chunks := splitPushChunks(immed)
	require.Equal(t, []int64{1}, chunks)
}

func TestSplitPushChunksPush32FourChunks(t *testing.T) {
	immed := make([]byte, 32)
	immed[31] = 0x2A // low byte of the last chunk = 42
	chunks := splitPushChunks(immed)
	require.Len(t, chunks, 4)
	require.Equal(t, int64(42), chunks[3])
	require.Equal(t, PushChunkCount(32), len(chunks))
}

func TestSplitPushChunksCountMatchesPushChunkCountForEveryWidth(t *testing.T) {
	for n := 1; n <= 32; n++ {
		immed := make([]byte, n)
		chunks := splitPushChunks(immed)
		require.Equal(t, PushChunkCount(n), len(chunks), "n=%d", n)
	}
}

func TestPushChunkCount(t *testing.T) {
	require.Equal(t, 1, PushChunkCount(1))
	require.Equal(t, 1, PushChunkCount(8))
	require.Equal(t, 2, PushChunkCount(9))
	require.Equal(t, 4, PushChunkCount(32))
}
