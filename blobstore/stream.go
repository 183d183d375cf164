package blobstore

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"caplink/capabilities"
	"caplink/codec"
)

const (
	// DefaultChunkSize is substituted when a requester's chunk size hint is
	// absent or unusable.
	DefaultChunkSize = 256 * 1024
	// MaxChunkSize caps the hint so a single dispatch payload stays bounded.
	MaxChunkSize = 4 * 1024 * 1024
)

// NormalizeChunkSize turns the requester's advisory chunk size into the size
// actually used: the hint is honored when sane, otherwise the default applies.
func NormalizeChunkSize(hint uint64) uint64 {
	if hint == 0 || hint > MaxChunkSize {
		return DefaultChunkSize
	}
	return hint
}

// StreamBlob pushes the contents of src to an actor as an ordered sequence of
// ReceiveChunk dispatches. Dispatches are serialized here, in sequence order,
// because the dispatch contract itself guarantees nothing about ordering
// across calls. The stream ends implicitly when the dispatched bytes reach
// blob.ByteSize; the first dispatch error aborts the stream.
func StreamBlob(d capabilities.Dispatcher, actor string, blob Blob, src io.Reader, chunkSize uint64) error {
	size := NormalizeChunkSize(chunkSize)
	buf := make([]byte, size)

	var seq, sent uint64
	for sent < blob.ByteSize {
		n, err := io.ReadFull(src, buf)
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			err = nil
		}
		if err != nil {
			return fmt.Errorf("blobstore: reading %s/%s at chunk %d: %w", blob.Container, blob.ID, seq, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: source ended after %d of %d bytes for %s/%s",
				ErrSizeMismatch, sent, blob.ByteSize, blob.Container, blob.ID)
		}
		if sent+uint64(n) > blob.ByteSize {
			return fmt.Errorf("%w: source longer than %d advertised bytes for %s/%s",
				ErrSizeMismatch, blob.ByteSize, blob.Container, blob.ID)
		}

		chunk := FileChunk{
			SequenceNo: seq,
			Container:  blob.Container,
			ID:         blob.ID,
			TotalBytes: blob.ByteSize,
			ChunkSize:  size,
			ChunkBytes: buf[:n],
		}
		payload, err := codec.Serialize(&chunk)
		if err != nil {
			return err
		}
		if _, err := d.Dispatch(actor, OpReceiveChunk, payload); err != nil {
			return fmt.Errorf("blobstore: actor %s rejected chunk %d of %s/%s: %w",
				actor, seq, blob.Container, blob.ID, err)
		}

		sent += uint64(n)
		seq++
	}

	log.Debugf("blobstore: streamed %s/%s to %s (%d bytes in %d chunks)",
		blob.Container, blob.ID, actor, sent, seq)
	return nil
}
