package blobstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startChunk(container, id string, totalBytes, chunkSize uint64) FileChunk {
	return FileChunk{Container: container, ID: id, TotalBytes: totalBytes, ChunkSize: chunkSize}
}

func dataChunk(container, id string, seq uint64, data []byte) FileChunk {
	return FileChunk{SequenceNo: seq, Container: container, ID: id, ChunkBytes: data}
}

func TestNewTransferChunkCount(t *testing.T) {
	tr := NewTransfer("b1", "c1", 9, 4)
	assert.Equal(t, uint64(3), tr.TotalChunks)

	tr = NewTransfer("b1", "c1", 8, 4)
	assert.Equal(t, uint64(2), tr.TotalChunks)

	// An unusable chunk size hint is normalized before the count is derived.
	tr = NewTransfer("b1", "c1", 10, 0)
	assert.Equal(t, uint64(DefaultChunkSize), tr.ChunkSize)
	assert.Equal(t, uint64(1), tr.TotalChunks)
}

func TestIncomingTransferInOrderCompletes(t *testing.T) {
	tr, err := NewIncomingTransfer(startChunk("c1", "b1", 9, 4))
	require.NoError(t, err)
	assert.Equal(t, TransferIdle, tr.State())

	done, err := tr.Accept(dataChunk("c1", "b1", 0, []byte("abcd")))
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, TransferInProgress, tr.State())

	done, err = tr.Accept(dataChunk("c1", "b1", 1, []byte("efgh")))
	require.NoError(t, err)
	assert.False(t, done)

	done, err = tr.Accept(dataChunk("c1", "b1", 2, []byte("i")))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, TransferComplete, tr.State())
	assert.Equal(t, uint64(9), tr.Received())
}

func TestIncomingTransferSequenceSkipAborts(t *testing.T) {
	tr, err := NewIncomingTransfer(startChunk("c1", "b1", 9, 4))
	require.NoError(t, err)

	_, err = tr.Accept(dataChunk("c1", "b1", 0, []byte("abcd")))
	require.NoError(t, err)

	// Skipping ahead must fail the transfer, never be buffered and reordered.
	_, err = tr.Accept(dataChunk("c1", "b1", 2, []byte("efgh")))
	assert.ErrorIs(t, err, ErrOutOfSequence)
	assert.Equal(t, TransferAborted, tr.State())

	// No resume from abort, even with the correct next sequence.
	_, err = tr.Accept(dataChunk("c1", "b1", 1, []byte("efgh")))
	assert.ErrorIs(t, err, ErrTransferFinished)
}

func TestIncomingTransferFirstChunkMustBeZero(t *testing.T) {
	tr, err := NewIncomingTransfer(startChunk("c1", "b1", 20, 4))
	require.NoError(t, err)

	_, err = tr.Accept(dataChunk("c1", "b1", 5, []byte("abcd")))
	assert.ErrorIs(t, err, ErrOutOfSequence)
}

func TestIncomingTransferOverrunAborts(t *testing.T) {
	tr, err := NewIncomingTransfer(startChunk("c1", "b1", 6, 4))
	require.NoError(t, err)

	_, err = tr.Accept(dataChunk("c1", "b1", 0, []byte("abcd")))
	require.NoError(t, err)
	_, err = tr.Accept(dataChunk("c1", "b1", 1, []byte("efgh")))
	assert.ErrorIs(t, err, ErrSizeMismatch)
	assert.Equal(t, TransferAborted, tr.State())
}

func TestIncomingTransferWrongBlobAborts(t *testing.T) {
	tr, err := NewIncomingTransfer(startChunk("c1", "b1", 8, 4))
	require.NoError(t, err)

	_, err = tr.Accept(dataChunk("c1", "other", 0, []byte("abcd")))
	assert.ErrorIs(t, err, ErrWrongTransfer)
}

func TestIncomingTransferRejectsChunksAfterCompletion(t *testing.T) {
	tr, err := NewIncomingTransfer(startChunk("c1", "b1", 4, 4))
	require.NoError(t, err)

	done, err := tr.Accept(dataChunk("c1", "b1", 0, []byte("abcd")))
	require.NoError(t, err)
	require.True(t, done)

	_, err = tr.Accept(dataChunk("c1", "b1", 1, []byte("more")))
	assert.ErrorIs(t, err, ErrTransferFinished)
}

func TestIncomingTransferZeroBytes(t *testing.T) {
	tr, err := NewIncomingTransfer(startChunk("c1", "empty", 0, 4))
	require.NoError(t, err)
	assert.Equal(t, TransferComplete, tr.State())
}

func TestIncomingTransferRejectsBadStart(t *testing.T) {
	_, err := NewIncomingTransfer(FileChunk{SequenceNo: 1, Container: "c1", ID: "b1", TotalBytes: 8})
	assert.ErrorIs(t, err, ErrBadStartChunk)

	_, err = NewIncomingTransfer(FileChunk{Container: "c1", ID: "b1", TotalBytes: 8, ChunkBytes: []byte("x")})
	assert.ErrorIs(t, err, ErrBadStartChunk)
}
