// Package db is the collection layer over the pager and tree: it owns the
// database lifecycle and is the surface the shell talks to.
package db

import (
	"github.com/sirupsen/logrus"

	"github.com/nireo/rapu/btree"
	"github.com/nireo/rapu/pager"
)

// DB couples one pager with one tree over a single database file.
type DB struct {
	pager *pager.Pager
	tree  *btree.Tree
	log   *logrus.Entry
}

// Open opens or creates the database file at path.
func Open(path string, opts pager.Options) (*DB, error) {
	p, err := pager.Open(path, opts)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{
		"path":      path,
		"page_size": opts.PageSize,
	})
	log.Info("database opened")
	return &DB{pager: p, tree: btree.New(p), log: log}, nil
}

// Put stores value under key, replacing any previous value.
func (d *DB) Put(key, value []byte) error {
	if err := d.tree.Put(key, value); err != nil {
		d.log.WithError(err).WithField("key_len", len(key)).Error("put failed")
		return err
	}
	d.log.WithFields(logrus.Fields{
		"key_len":   len(key),
		"value_len": len(value),
	}).Debug("put")
	return nil
}

// Get returns the value stored under key. A miss surfaces
// btree.ErrNotFound to the caller; it is recoverable and not logged.
func (d *DB) Get(key []byte) ([]byte, error) {
	return d.tree.Find(key)
}

// Flush persists the freelist and meta record without closing the file.
func (d *DB) Flush() error {
	if err := d.pager.WriteFreelist(); err != nil {
		return err
	}
	return d.pager.WriteMeta()
}

// Close flushes allocator state and closes the underlying file.
func (d *DB) Close() error {
	d.log.Info("database closed")
	return d.pager.Close()
}
