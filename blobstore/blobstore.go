// Package blobstore contains data types and the chunked streaming protocol for
// the `caplink:blobstore` capability. Arbitrarily large blobs move across the
// dispatch contract as ordered sequences of bounded FileChunk payloads; the
// types here are shared by providers and actors on both legs of a transfer.
package blobstore

// Operations outside the chunk stream.
const (
	// Guest sends a Container, receives the Container back
	OpCreateContainer = "CreateContainer"
	// Guest sends a Container, lack of error indicates success
	OpRemoveContainer = "RemoveContainer"
	// Guest sends a Blob, lack of error indicates success
	OpRemoveObject = "RemoveObject"
	// Guest sends a Container, receives a BlobList back
	OpListObjects = "ListObjects"
	// Guest sends a partially-populated Blob (id and container required),
	// receives the fully-populated Blob back
	OpGetObjectInfo = "GetObjectInfo"
)

// Operations making up the chunk stream.
const (
	// Guest sends a metadata-only FileChunk to initiate an upload, lack of
	// error is success
	OpStartUpload = "StartUpload"
	// Guest sends one FileChunk per segment of the blob being uploaded
	OpUploadChunk = "UploadChunk"
	// Guest sends a StreamRequest; the call returns immediately and the
	// provider then drives OpReceiveChunk dispatches into the guest
	OpStartDownload = "StartDownload"
	// Guest receives a FileChunk for each segment of a requested download
	OpReceiveChunk = "ReceiveChunk"
)

// FileChunk is a single segment of a segmented blob stream. The last chunk of
// a stream may carry fewer than ChunkSize bytes.
type FileChunk struct {
	// Sequence number used for ordering and retry logic
	SequenceNo uint64 `cbor:"sequenceNo"`
	// Container in which the blob exists
	Container string `cbor:"container"`
	// Unique ID of the blob
	ID string `cbor:"id"`
	// Total number of bytes in the entire blob
	TotalBytes uint64 `cbor:"totalBytes"`
	// Number of bytes per chunk for this transfer
	ChunkSize uint64 `cbor:"chunkSize"`
	// Raw bytes of this chunk; empty on the metadata chunk that starts an upload
	ChunkBytes []byte `cbor:"chunkBytes,omitempty"`
}

// Container is a logical namespace holding blobs within a store.
type Container struct {
	ID string `cbor:"id"`
}

type ContainerList struct {
	Containers []Container `cbor:"containers,omitempty"`
}

// Blob is metadata about a stored object. It never carries the object's bytes.
type Blob struct {
	ID        string `cbor:"id"`
	Container string `cbor:"container"`
	ByteSize  uint64 `cbor:"byteSize"`
}

type BlobList struct {
	Blobs []Blob `cbor:"blobs,omitempty"`
}

// StreamRequest asks a provider to begin streaming a blob down to the caller.
// ChunkSize is a hint; the provider may substitute its own chunk size and
// consumers must not assume the hint is what they will get.
type StreamRequest struct {
	ID        string `cbor:"id"`
	Container string `cbor:"container"`
	ChunkSize uint64 `cbor:"chunkSize"`
}

// Transfer is bookkeeping metadata about an in-flight transfer.
type Transfer struct {
	BlobID      string `cbor:"blobId"`
	Container   string `cbor:"container"`
	ChunkSize   uint64 `cbor:"chunkSize"`
	TotalSize   uint64 `cbor:"totalSize"`
	TotalChunks uint64 `cbor:"totalChunks"`
}

// NewTransfer describes a transfer of totalSize bytes in chunks of chunkSize,
// with TotalChunks rounded up to cover a short final chunk.
func NewTransfer(blobID, container string, totalSize, chunkSize uint64) Transfer {
	chunkSize = NormalizeChunkSize(chunkSize)
	return Transfer{
		BlobID:      blobID,
		Container:   container,
		ChunkSize:   chunkSize,
		TotalSize:   totalSize,
		TotalChunks: (totalSize + chunkSize - 1) / chunkSize,
	}
}
