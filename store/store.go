// Package store adapts a git object database to a sequenced frame archive:
// one commit per frame, a single frame.bin blob per commit, parent links
// defining playback order, and the branch head at the latest frame.
//
// The adapter owns all interaction with go-git. Access to the repository
// handle is serialized by a mutex; go-git storage backends make no
// thread-safety promises, and the prefetcher reads concurrently with the
// decoder.
package store

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/gitvid/gitvid/errs"
)

// committer identity stamped on every frame commit.
const (
	committerName  = "gitvid"
	committerEmail = "gitvid@localhost"
)

// TreeEntry is one (name, mode, blob) entry of a commit tree. The encoder
// always writes a single regular-file entry named frame.bin.
type TreeEntry struct {
	Name string
	Mode filemode.FileMode
	OID  string
}

// Store is an exclusive handle on one frame repository.
type Store struct {
	mu   sync.Mutex
	repo *git.Repository
}

// Init ensures a bare repository exists at path and opens it. Calling Init
// on an already-initialized path opens the existing repository.
func Init(path string) (*Store, error) {
	st := filesystem.NewStorage(osfs.New(path), cache.NewObjectLRUDefault())

	repo, err := git.Init(st, nil)
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		repo, err = git.Open(st, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: init %s: %v", errs.ErrStore, path, err)
	}

	return &Store{repo: repo}, nil
}

// Open opens an existing repository at path.
func Open(path string) (*Store, error) {
	st := filesystem.NewStorage(osfs.New(path), cache.NewObjectLRUDefault())

	repo, err := git.Open(st, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", errs.ErrStore, path, err)
	}

	return &Store{repo: repo}, nil
}

// NewMemory creates a store backed by in-memory storage. Used by tests and
// benchmarks; behavior is identical to an on-disk store.
func NewMemory() (*Store, error) {
	repo, err := git.Init(memory.NewStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: init in-memory: %v", errs.ErrStore, err)
	}

	return &Store{repo: repo}, nil
}

// PutBlob writes a payload to the object database and returns its 40-hex
// content hash.
func (s *Store) PutBlob(data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)

	w, err := obj.Writer()
	if err != nil {
		return "", fmt.Errorf("%w: blob writer: %v", errs.ErrStore, err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("%w: blob write: %v", errs.ErrStore, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: blob close: %v", errs.ErrStore, err)
	}

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return "", fmt.Errorf("%w: store blob: %v", errs.ErrStore, err)
	}

	return hash.String(), nil
}

// PutTree builds a tree object from the given entries and returns its hash.
func (s *Store) PutTree(entries []TreeEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree := object.Tree{Entries: make([]object.TreeEntry, 0, len(entries))}
	for _, e := range entries {
		hash := plumbing.NewHash(e.OID)
		tree.Entries = append(tree.Entries, object.TreeEntry{
			Name: e.Name,
			Mode: e.Mode,
			Hash: hash,
		})
	}

	obj := s.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return "", fmt.Errorf("%w: encode tree: %v", errs.ErrStore, err)
	}

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return "", fmt.Errorf("%w: store tree: %v", errs.ErrStore, err)
	}

	return hash.String(), nil
}

// PutFrameTree builds the single-entry frame tree every frame commit uses.
func (s *Store) PutFrameTree(name, blobOID string) (string, error) {
	return s.PutTree([]TreeEntry{{Name: name, Mode: filemode.Regular, OID: blobOID}})
}

// PutCommit creates a commit for treeOID with an optional single parent
// (parentOID empty for the first frame) and returns the commit hash.
func (s *Store) PutCommit(treeOID, parentOID, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig := object.Signature{Name: committerName, Email: committerEmail, When: time.Now()}
	commit := object.Commit{
		Author:    sig,
		Committer: sig,
		Message:   message,
		TreeHash:  plumbing.NewHash(treeOID),
	}
	if parentOID != "" {
		commit.ParentHashes = []plumbing.Hash{plumbing.NewHash(parentOID)}
	}

	obj := s.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return "", fmt.Errorf("%w: encode commit: %v", errs.ErrStore, err)
	}

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return "", fmt.Errorf("%w: store commit: %v", errs.ErrStore, err)
	}

	return hash.String(), nil
}

// SetHead moves the default branch reference to the given commit.
func (s *Store) SetHead(commitOID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := plumbing.Master
	if head, err := s.repo.Storer.Reference(plumbing.HEAD); err == nil && head.Type() == plumbing.SymbolicReference {
		target = head.Target()
	}

	ref := plumbing.NewHashReference(target, plumbing.NewHash(commitOID))
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("%w: set %s to %s: %v", errs.ErrStore, target, commitOID, err)
	}

	return nil
}

// ListCommitsOldestFirst walks the parent chain from HEAD and returns commit
// oids in chronological (frame number) order. An empty repository yields an
// empty list, not an error.
func (s *Store) ListCommitsOldestFirst() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	head, err := s.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: resolve HEAD: %v", errs.ErrStore, err)
	}

	var oids []string
	hash := head.Hash()
	for {
		commit, err := object.GetCommit(s.repo.Storer, hash)
		if err != nil {
			return nil, fmt.Errorf("%w: walk commit %s: %v", errs.ErrStore, hash, err)
		}
		oids = append(oids, hash.String())

		if commit.NumParents() == 0 {
			break
		}
		hash = commit.ParentHashes[0]
	}

	// The walk runs newest to oldest; playback wants frame order.
	for i, j := 0, len(oids)-1; i < j; i, j = i+1, j-1 {
		oids[i], oids[j] = oids[j], oids[i]
	}

	return oids, nil
}

// ReadFrameBlob resolves a commit's tree, finds its frame.bin entry, and
// returns the blob contents.
func (s *Store) ReadFrameBlob(commitOID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	commit, err := object.GetCommit(s.repo.Storer, plumbing.NewHash(commitOID))
	if err != nil {
		return nil, fmt.Errorf("%w: lookup commit %s: %v", errs.ErrStore, commitOID, err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("%w: tree of commit %s: %v", errs.ErrStore, commitOID, err)
	}

	entry, err := tree.FindEntry("frame.bin")
	if err != nil {
		return nil, fmt.Errorf("%w: commit %s", errs.ErrFrameNotFound, commitOID)
	}

	blob, err := object.GetBlob(s.repo.Storer, entry.Hash)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup blob %s: %v", errs.ErrStore, entry.Hash, err)
	}

	r, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("%w: open blob %s: %v", errs.ErrStore, entry.Hash, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read blob %s: %v", errs.ErrStore, entry.Hash, err)
	}

	return data, nil
}

// ResolvePrefix expands a short commit oid (7..40 hex characters) to the
// full 40-hex form. Ambiguous or unknown prefixes are errors.
func (s *Store) ResolvePrefix(short string) (string, error) {
	short = strings.ToLower(strings.TrimSpace(short))
	if len(short) < 7 || len(short) > 40 {
		return "", fmt.Errorf("%w: %q is not a 7..40 character oid prefix", errs.ErrStore, short)
	}
	if len(short) == 40 {
		return short, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	iter, err := s.repo.Storer.IterEncodedObjects(plumbing.CommitObject)
	if err != nil {
		return "", fmt.Errorf("%w: iterate commits: %v", errs.ErrStore, err)
	}
	defer iter.Close()

	var match string
	err = iter.ForEach(func(obj plumbing.EncodedObject) error {
		hex := obj.Hash().String()
		if !strings.HasPrefix(hex, short) {
			return nil
		}
		if match != "" && match != hex {
			return fmt.Errorf("%w: ambiguous oid prefix %q", errs.ErrStore, short)
		}
		match = hex

		return nil
	})
	if err != nil {
		return "", err
	}
	if match == "" {
		return "", fmt.Errorf("%w: no commit matches prefix %q", errs.ErrStore, short)
	}

	return match, nil
}
