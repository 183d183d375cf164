// Package bloblevel is the reference blob-store capability provider. Blob
// bytes and metadata live in a local LevelDB; uploads are validated through
// the blobstore transfer state machine and downloads are pushed back to the
// requesting actor through the configured dispatcher.
package bloblevel

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/syndtr/goleveldb/leveldb"
	"golang.org/x/sync/semaphore"

	log "github.com/sirupsen/logrus"

	"caplink/blobstore"
	"caplink/capabilities"
	"caplink/codec"
	"caplink/core"
)

// CapabilityID identifies the capability this provider implements.
const CapabilityID = "caplink:blobstore"

const (
	defaultTransferTTL = 2 * time.Minute
	defaultMaxStreams  = 8
)

// Options configures a Provider.
type Options struct {
	// Path of the LevelDB directory
	Path string
	// Idle time after which an in-flight upload is considered abandoned and
	// aborted. Zero means the default.
	TransferTTL time.Duration
	// Bound on concurrently running outbound download streams. Zero means the
	// default.
	MaxStreams int64
}

// upload is the provider-side bookkeeping for one in-flight upload.
type upload struct {
	mu      sync.Mutex
	tracker *blobstore.IncomingTransfer
	buf     []byte
}

type Provider struct {
	db *leveldb.DB

	mu         sync.RWMutex
	dispatcher capabilities.Dispatcher
	configured bool

	bindings *capabilities.Bindings
	uploads  *ttlcache.Cache[string, *upload]
	streams  *semaphore.Weighted
}

var _ capabilities.CapabilityProvider = (*Provider)(nil)

func New(opts Options) (*Provider, error) {
	db, err := openStore(opts.Path)
	if err != nil {
		return nil, err
	}

	ttl := opts.TransferTTL
	if ttl == 0 {
		ttl = defaultTransferTTL
	}
	maxStreams := opts.MaxStreams
	if maxStreams == 0 {
		maxStreams = defaultMaxStreams
	}

	uploads := ttlcache.New[string, *upload](
		ttlcache.WithTTL[string, *upload](ttl),
	)
	uploads.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *upload]) {
		if reason == ttlcache.EvictionReasonExpired {
			item.Value().tracker.Abort()
			log.Warnf("bloblevel: upload %s abandoned after %v idle, aborting", item.Key(), ttl)
		}
	})
	go uploads.Start()

	return &Provider{
		db:         db,
		dispatcher: capabilities.NullDispatcher{},
		bindings:   capabilities.NewBindings(),
		uploads:    uploads,
		streams:    semaphore.NewWeighted(maxStreams),
	}, nil
}

// Close releases the store and stops the upload janitor.
func (p *Provider) Close() error {
	p.uploads.Stop()
	return p.db.Close()
}

// ConfigureDispatch installs the host's dispatcher. It is called exactly once,
// before any HandleCall; a second call is an integration error.
func (p *Provider) ConfigureDispatch(d capabilities.Dispatcher) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.configured {
		return fmt.Errorf("bloblevel: dispatcher already configured")
	}
	p.dispatcher = d
	p.configured = true
	return nil
}

func (p *Provider) currentDispatcher() capabilities.Dispatcher {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dispatcher
}

func (p *Provider) HandleCall(actor string, op string, payload []byte) ([]byte, error) {
	switch op {
	case capabilities.OpGetCapabilityDescriptor:
		return codec.Serialize(descriptor())
	case core.OpBindActor:
		return nil, p.bindActor(payload)
	case core.OpRemoveActor:
		return nil, p.removeActor(payload)
	case blobstore.OpCreateContainer:
		return p.createContainer(payload)
	case blobstore.OpRemoveContainer:
		return nil, p.handleRemoveContainer(payload)
	case blobstore.OpRemoveObject:
		return nil, p.handleRemoveObject(payload)
	case blobstore.OpListObjects:
		return p.handleListObjects(payload)
	case blobstore.OpGetObjectInfo:
		return p.handleGetObjectInfo(payload)
	case blobstore.OpStartUpload:
		return nil, p.startUpload(payload)
	case blobstore.OpUploadChunk:
		return nil, p.uploadChunk(payload)
	case blobstore.OpStartDownload:
		return nil, p.startDownload(actor, payload)
	default:
		return nil, fmt.Errorf("%w: %q for %s", capabilities.ErrUnknownOperation, op, CapabilityID)
	}
}

func (p *Provider) bindActor(payload []byte) error {
	var cfg core.CapabilityConfiguration
	if err := codec.Deserialize(payload, &cfg); err != nil {
		return err
	}
	log.Debugf("bloblevel: binding actor %s", cfg.Module)
	return p.bindings.Bind(cfg)
}

func (p *Provider) removeActor(payload []byte) error {
	var cfg core.CapabilityConfiguration
	if err := codec.Deserialize(payload, &cfg); err != nil {
		return err
	}
	log.Debugf("bloblevel: removing actor %s", cfg.Module)
	p.bindings.Remove(cfg.Module)
	return nil
}

func (p *Provider) createContainer(payload []byte) ([]byte, error) {
	var c blobstore.Container
	if err := codec.Deserialize(payload, &c); err != nil {
		return nil, err
	}
	if err := checkNames(c.ID); err != nil {
		return nil, err
	}
	if err := p.db.Put(containerKey(c.ID), []byte{}, nil); err != nil {
		return nil, err
	}
	return codec.Serialize(&c)
}

func (p *Provider) handleRemoveContainer(payload []byte) error {
	var c blobstore.Container
	if err := codec.Deserialize(payload, &c); err != nil {
		return err
	}
	return p.removeContainer(c.ID)
}

func (p *Provider) handleRemoveObject(payload []byte) error {
	var b blobstore.Blob
	if err := codec.Deserialize(payload, &b); err != nil {
		return err
	}
	// Removing a nonexistent object is not an error.
	return p.removeObject(b.Container, b.ID)
}

func (p *Provider) handleListObjects(payload []byte) ([]byte, error) {
	var c blobstore.Container
	if err := codec.Deserialize(payload, &c); err != nil {
		return nil, err
	}
	blobs, err := p.listBlobs(c.ID)
	if err != nil {
		return nil, err
	}
	return codec.Serialize(&blobstore.BlobList{Blobs: blobs})
}

func (p *Provider) handleGetObjectInfo(payload []byte) ([]byte, error) {
	var b blobstore.Blob
	if err := codec.Deserialize(payload, &b); err != nil {
		return nil, err
	}
	meta, err := p.getBlobMeta(b.Container, b.ID)
	if err != nil {
		return nil, fmt.Errorf("bloblevel: no such object %s/%s: %w", b.Container, b.ID, err)
	}
	return codec.Serialize(&meta)
}

func uploadCacheKey(container, id string) string {
	return container + "/" + id
}

func (p *Provider) startUpload(payload []byte) error {
	var chunk blobstore.FileChunk
	if err := codec.Deserialize(payload, &chunk); err != nil {
		return err
	}
	if err := checkNames(chunk.Container, chunk.ID); err != nil {
		return err
	}
	tracker, err := blobstore.NewIncomingTransfer(chunk)
	if err != nil {
		return err
	}

	// A zero-byte blob is complete before any data chunk arrives.
	if tracker.State() == blobstore.TransferComplete {
		return p.putBlob(blobstore.Blob{ID: chunk.ID, Container: chunk.Container}, nil)
	}

	// Starting again for the same (container, id) replaces the prior attempt;
	// a new transfer always restarts at sequence 0.
	p.uploads.Set(uploadCacheKey(chunk.Container, chunk.ID), &upload{
		tracker: tracker,
		buf:     make([]byte, 0, chunk.TotalBytes),
	}, ttlcache.DefaultTTL)
	log.Debugf("bloblevel: upload of %s/%s started (%d bytes)", chunk.Container, chunk.ID, chunk.TotalBytes)
	return nil
}

func (p *Provider) uploadChunk(payload []byte) error {
	var chunk blobstore.FileChunk
	if err := codec.Deserialize(payload, &chunk); err != nil {
		return err
	}

	key := uploadCacheKey(chunk.Container, chunk.ID)
	item := p.uploads.Get(key) // touch extends the idle TTL
	if item == nil {
		return fmt.Errorf("bloblevel: no upload in progress for %s/%s (expected StartUpload first)",
			chunk.Container, chunk.ID)
	}
	u := item.Value()

	u.mu.Lock()
	done, err := u.tracker.Accept(chunk)
	if err != nil {
		u.mu.Unlock()
		p.uploads.Delete(key)
		return err
	}
	u.buf = append(u.buf, chunk.ChunkBytes...)
	data := u.buf
	u.mu.Unlock()

	if !done {
		return nil
	}

	p.uploads.Delete(key)
	meta := blobstore.Blob{ID: chunk.ID, Container: chunk.Container, ByteSize: uint64(len(data))}
	if err := p.putBlob(meta, data); err != nil {
		return err
	}
	log.Debugf("bloblevel: upload of %s/%s complete (%d bytes)", chunk.Container, chunk.ID, len(data))
	return nil
}

// startDownload acknowledges the request immediately; chunk delivery happens
// asynchronously through the dispatcher, serialized in sequence order by
// StreamBlob.
func (p *Provider) startDownload(actor string, payload []byte) error {
	var req blobstore.StreamRequest
	if err := codec.Deserialize(payload, &req); err != nil {
		return err
	}
	meta, err := p.getBlobMeta(req.Container, req.ID)
	if err != nil {
		return fmt.Errorf("bloblevel: no such object %s/%s: %w", req.Container, req.ID, err)
	}
	data, err := p.db.Get(dataKey(req.Container, req.ID), nil)
	if err != nil {
		return err
	}

	d := p.currentDispatcher()
	go func() {
		if err := p.streams.Acquire(context.Background(), 1); err != nil {
			return
		}
		defer p.streams.Release(1)
		if err := blobstore.StreamBlob(d, actor, meta, bytes.NewReader(data), req.ChunkSize); err != nil {
			log.Errorf("bloblevel: download of %s/%s to %s failed: %v", req.Container, req.ID, actor, err)
		}
	}()
	return nil
}

func descriptor() capabilities.CapabilityDescriptor {
	return capabilities.NewDescriptorBuilder().
		ID(CapabilityID).
		Name("LevelDB Blob Store").
		Version(core.Version).
		Revision(1).
		LongDescription("A single-node blob store capability provider backed by LevelDB").
		WithOperation(blobstore.OpCreateContainer, capabilities.ToProvider, "Create a container, idempotently").
		WithOperation(blobstore.OpRemoveContainer, capabilities.ToProvider, "Remove a container and its contents").
		WithOperation(blobstore.OpRemoveObject, capabilities.ToProvider, "Remove an object; absence of error is success").
		WithOperation(blobstore.OpListObjects, capabilities.ToProvider, "List the blobs within a container").
		WithOperation(blobstore.OpGetObjectInfo, capabilities.ToProvider, "Fetch the metadata of a single blob").
		WithOperation(blobstore.OpStartUpload, capabilities.ToProvider, "Begin a chunked upload").
		WithOperation(blobstore.OpUploadChunk, capabilities.ToProvider, "Deliver the next chunk of an upload").
		WithOperation(blobstore.OpStartDownload, capabilities.ToProvider, "Request a chunked download stream").
		WithOperation(blobstore.OpReceiveChunk, capabilities.ToActor, "Deliver the next chunk of a download").
		Build()
}
