package ineld

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Archive persists document snapshots.
type Archive interface {
	// Put stores the snapshot of a document, replacing any previous one.
	Put(id uuid.UUID, s *Snapshot) error

	// Get retrieves the snapshot of a document.
	Get(id uuid.UUID) (*Snapshot, error)

	// Delete removes the snapshot of a document.
	Delete(id uuid.UUID) error

	// Close releases the archive.
	Close() error
}

// RegistryOptions configures a registry.
type RegistryOptions struct {
	// Conf is used for the tree of every document the registry creates.
	Conf Conf

	// Archive is optional; without it Save and Load fail with ErrNoArchive.
	Archive Archive
}

// Document is a tree with a designated root.
type Document struct {
	ID   uuid.UUID
	Tree *Tree
	Root Handle
}

// Registry tracks open documents. Unlike a Tree it is safe for concurrent
// use; the trees it hands out are not.
type Registry struct {
	conf    Conf
	log     *zap.Logger
	archive Archive

	docs   map[uuid.UUID]*Document
	closed bool
	mu     sync.RWMutex
}

// Init creates a registry.
func Init(options RegistryOptions) (*Registry, error) {
	conf := options.Conf.normalized()
	return &Registry{
		conf:    conf,
		log:     conf.Logger.Named("registry"),
		archive: options.Archive,
		docs:    make(map[uuid.UUID]*Document),
	}, nil
}

// New creates and registers an empty document rooted at a Frame.
func (r *Registry) New() (*Document, error) {
	t := NewTree(r.conf)
	doc := &Document{ID: uuid.New(), Tree: t, Root: t.New(&Frame{})}
	if err := r.Register(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Register adds doc under its ID.
func (r *Registry) Register(doc *Document) error {
	if doc == nil || doc.Tree == nil || !doc.Tree.Valid(doc.Root) {
		return ErrInvalidHandle
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRegistryClosed
	}
	if _, ok := r.docs[doc.ID]; ok {
		return fmt.Errorf("%s: %w", doc.ID, ErrDuplicateDocument)
	}
	r.docs[doc.ID] = doc
	r.log.Debug("document registered", zap.Stringer("id", doc.ID))
	return nil
}

// Unregister forgets a document. Its archived snapshot, if any, is kept.
func (r *Registry) Unregister(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRegistryClosed
	}
	if _, ok := r.docs[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrDocumentNotFound)
	}
	delete(r.docs, id)
	r.log.Debug("document unregistered", zap.Stringer("id", id))
	return nil
}

// Lookup returns a registered document.
func (r *Registry) Lookup(id uuid.UUID) (*Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrDocumentNotFound)
	}
	return doc, nil
}

// Documents returns the ids of all registered documents in byte order.
func (r *Registry) Documents() []uuid.UUID {
	r.mu.RLock()
	ids := make([]uuid.UUID, 0, len(r.docs))
	for id := range r.docs {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// Save writes the snapshot of a registered document to the archive.
func (r *Registry) Save(id uuid.UUID) error {
	doc, err := r.Lookup(id)
	if err != nil {
		return err
	}
	if r.archive == nil {
		return ErrNoArchive
	}
	return r.save(doc)
}

func (r *Registry) save(doc *Document) error {
	s, err := doc.Tree.Snapshot(doc.Root)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", doc.ID, err)
	}
	if err := r.archive.Put(doc.ID, s); err != nil {
		return fmt.Errorf("save %s: %w", doc.ID, err)
	}
	r.log.Debug("document saved", zap.Stringer("id", doc.ID))
	return nil
}

// Load restores a document from the archive into a new tree and registers
// it.
func (r *Registry) Load(id uuid.UUID) (*Document, error) {
	if r.archive == nil {
		return nil, ErrNoArchive
	}
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return nil, ErrRegistryClosed
	}
	s, err := r.archive.Get(id)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	t := NewTree(r.conf)
	root, err := t.Restore(s)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", id, err)
	}
	doc := &Document{ID: id, Tree: t, Root: root}
	if err := r.Register(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Shutdown saves every registered document when an archive is present,
// closes the archive and makes the registry unusable. Every failure is
// reported; a failed save does not stop the others.
func (r *Registry) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRegistryClosed
	}
	r.closed = true
	if r.archive == nil {
		return nil
	}
	var err error
	for _, doc := range r.docs {
		if e := r.save(doc); e != nil {
			r.log.Error("document lost on shutdown", zap.Stringer("id", doc.ID), zap.Error(e))
			err = multierr.Append(err, e)
		}
	}
	err = multierr.Append(err, r.archive.Close())
	return err
}
