package bloblevel

import (
	"errors"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	log "github.com/sirupsen/logrus"

	"caplink/blobstore"
	"caplink/codec"
)

// Key layout. Container and blob ids may not contain the separator; checkNames
// rejects them before any key is formed, otherwise container "a" blob "b/c"
// would collide with container "a/b" blob "c".
const (
	keyPrefixContainer = "c/"
	keyPrefixMeta      = "m/"
	keyPrefixData      = "d/"
)

// ErrBadName rejects container and blob ids that cannot be keyed safely.
var ErrBadName = errors.New("bloblevel: container and blob ids may not contain '/'")

func checkNames(names ...string) error {
	for _, n := range names {
		if strings.Contains(n, "/") {
			return ErrBadName
		}
	}
	return nil
}

func containerKey(container string) []byte {
	return []byte(keyPrefixContainer + container)
}

func metaKey(container, id string) []byte {
	return []byte(keyPrefixMeta + container + "/" + id)
}

func dataKey(container, id string) []byte {
	return []byte(keyPrefixData + container + "/" + id)
}

func openStore(path string) (*leveldb.DB, error) {
	opts := &opt.Options{
		Compression: opt.NoCompression,
	}

	db, err := leveldb.OpenFile(path, opts)
	if ldberrors.IsCorrupted(err) {
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, err
	}

	log.Infof("bloblevel: opened store at %s", path)
	return db, nil
}

// putBlob commits an assembled blob atomically: data, metadata and the
// container marker in one batch.
func (p *Provider) putBlob(meta blobstore.Blob, data []byte) error {
	enc, err := codec.Serialize(&meta)
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Put(containerKey(meta.Container), []byte{})
	batch.Put(metaKey(meta.Container, meta.ID), enc)
	batch.Put(dataKey(meta.Container, meta.ID), data)
	return p.db.Write(batch, nil)
}

func (p *Provider) getBlobMeta(container, id string) (blobstore.Blob, error) {
	enc, err := p.db.Get(metaKey(container, id), nil)
	if err != nil {
		return blobstore.Blob{}, err
	}
	var meta blobstore.Blob
	if err := codec.Deserialize(enc, &meta); err != nil {
		return blobstore.Blob{}, err
	}
	return meta, nil
}

func (p *Provider) listBlobs(container string) ([]blobstore.Blob, error) {
	var blobs []blobstore.Blob
	iter := p.db.NewIterator(util.BytesPrefix([]byte(keyPrefixMeta+container+"/")), nil)
	defer iter.Release()
	for iter.Next() {
		var meta blobstore.Blob
		if err := codec.Deserialize(iter.Value(), &meta); err != nil {
			return nil, err
		}
		blobs = append(blobs, meta)
	}
	return blobs, iter.Error()
}

// removeContainer deletes the container marker and everything stored in it.
func (p *Provider) removeContainer(container string) error {
	batch := new(leveldb.Batch)
	batch.Delete(containerKey(container))
	for _, prefix := range []string{keyPrefixMeta, keyPrefixData} {
		iter := p.db.NewIterator(util.BytesPrefix([]byte(prefix+container+"/")), nil)
		for iter.Next() {
			key := make([]byte, len(iter.Key()))
			copy(key, iter.Key())
			batch.Delete(key)
		}
		iter.Release()
		if err := iter.Error(); err != nil {
			return err
		}
	}
	return p.db.Write(batch, nil)
}

func (p *Provider) removeObject(container, id string) error {
	batch := new(leveldb.Batch)
	batch.Delete(metaKey(container, id))
	batch.Delete(dataKey(container, id))
	return p.db.Write(batch, nil)
}
