package blobstore

import (
	"errors"
	"fmt"
	"sync"
)

// TransferState tracks one transfer, either direction, through its lifecycle.
// There is no resume from Aborted; a fresh transfer restarts at sequence 0.
type TransferState int

const (
	TransferIdle TransferState = iota
	TransferInProgress
	TransferComplete
	TransferAborted
)

func (s TransferState) String() string {
	switch s {
	case TransferIdle:
		return "idle"
	case TransferInProgress:
		return "in_progress"
	case TransferComplete:
		return "complete"
	case TransferAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrOutOfSequence rejects a chunk whose sequence number is not exactly
	// the next expected value. Chunks are never buffered for reordering.
	ErrOutOfSequence = errors.New("blobstore: chunk out of sequence")
	// ErrSizeMismatch rejects a transfer whose received bytes exceed, or end
	// short of, the advertised total.
	ErrSizeMismatch = errors.New("blobstore: transfer size mismatch")
	// ErrTransferFinished rejects a chunk for a transfer already complete or aborted.
	ErrTransferFinished = errors.New("blobstore: transfer already finished")
	// ErrWrongTransfer rejects a chunk addressed to a different (container, id).
	ErrWrongTransfer = errors.New("blobstore: chunk belongs to a different transfer")
	// ErrBadStartChunk rejects a transfer start that is not a metadata-only
	// chunk with sequence number 0.
	ErrBadStartChunk = errors.New("blobstore: invalid transfer start chunk")
)

// IncomingTransfer enforces the receive side of the chunk stream for one
// (container, id) pair: strictly increasing sequence numbers from 0, byte
// accounting against the advertised total, implicit completion when the count
// is reached. It is used by providers for uploads and by actors for downloads.
// Safe for concurrent use, though chunks for one transfer are expected to
// arrive serialized.
type IncomingTransfer struct {
	mu         sync.Mutex
	container  string
	blobID     string
	totalBytes uint64
	nextSeq    uint64
	received   uint64
	state      TransferState
}

// NewIncomingTransfer begins tracking a transfer announced by start, the
// metadata-only chunk carried by StartUpload (or synthesized by a downloading
// actor from the first ReceiveChunk's header fields). A transfer announcing
// zero total bytes is complete before any data chunk arrives.
func NewIncomingTransfer(start FileChunk) (*IncomingTransfer, error) {
	if start.SequenceNo != 0 || len(start.ChunkBytes) != 0 {
		return nil, fmt.Errorf("%w: sequenceNo=%d, %d payload bytes",
			ErrBadStartChunk, start.SequenceNo, len(start.ChunkBytes))
	}
	t := &IncomingTransfer{
		container:  start.Container,
		blobID:     start.ID,
		totalBytes: start.TotalBytes,
		state:      TransferIdle,
	}
	if t.totalBytes == 0 {
		t.state = TransferComplete
	}
	return t, nil
}

// Accept validates and accounts for one data chunk. It reports done=true when
// the cumulative received bytes equal the transfer total; there is no explicit
// end-of-stream operation. Any error aborts the transfer permanently.
func (t *IncomingTransfer) Accept(chunk FileChunk) (done bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case TransferComplete, TransferAborted:
		return false, fmt.Errorf("%w: %s/%s is %s", ErrTransferFinished, t.container, t.blobID, t.state)
	}
	if chunk.Container != t.container || chunk.ID != t.blobID {
		t.state = TransferAborted
		return false, fmt.Errorf("%w: got %s/%s, tracking %s/%s",
			ErrWrongTransfer, chunk.Container, chunk.ID, t.container, t.blobID)
	}
	if chunk.SequenceNo != t.nextSeq {
		t.state = TransferAborted
		return false, fmt.Errorf("%w: expected %d, got %d for %s/%s",
			ErrOutOfSequence, t.nextSeq, chunk.SequenceNo, t.container, t.blobID)
	}
	if t.received+uint64(len(chunk.ChunkBytes)) > t.totalBytes {
		t.state = TransferAborted
		return false, fmt.Errorf("%w: %d bytes received of %d advertised for %s/%s",
			ErrSizeMismatch, t.received+uint64(len(chunk.ChunkBytes)), t.totalBytes, t.container, t.blobID)
	}

	t.nextSeq++
	t.received += uint64(len(chunk.ChunkBytes))
	t.state = TransferInProgress
	if t.received == t.totalBytes {
		t.state = TransferComplete
		return true, nil
	}
	return false, nil
}

// Abort marks the transfer failed. Further chunks are rejected.
func (t *IncomingTransfer) Abort() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TransferComplete {
		t.state = TransferAborted
	}
}

func (t *IncomingTransfer) State() TransferState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Received reports the cumulative bytes accepted so far.
func (t *IncomingTransfer) Received() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.received
}

// TotalBytes reports the advertised size of the transfer.
func (t *IncomingTransfer) TotalBytes() uint64 {
	return t.totalBytes
}
