// Package git locates a repository on disk, resolves the starting
// reference and cross-checks decoded history against go-git.
package git

import (
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/masmgr/commitgraph-go/internal/object"
)

// ErrMissingReference means the starting reference could not be resolved.
var ErrMissingReference = errors.New("missing reference")

// Repository is an opened repository with its loose object store.
type Repository struct {
	// Path is the path the repository was opened from.
	Path string
	// GitDir is the repository's git directory (".git" or the bare root).
	GitDir string

	repo  *gogit.Repository
	store *object.Store
}

// Open finds the repository containing path. Parent directories are
// searched for a ".git" entry; bare repositories are opened directly.
// A missing objects directory is an error.
func Open(path string) (*Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		// Detection only looks for ".git" entries; a bare root has none.
		repo, err = gogit.PlainOpen(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}

	storage, ok := repo.Storer.(*filesystem.Storage)
	if !ok {
		return nil, fmt.Errorf("open repository %s: storage is not on disk", path)
	}
	gitDir := storage.Filesystem().Root()

	store, err := object.OpenStore(filepath.Join(gitDir, "objects"))
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}

	return &Repository{Path: path, GitDir: gitDir, repo: repo, store: store}, nil
}

// Store returns the loose object store.
func (r *Repository) Store() *object.Store {
	return r.store
}

// ResolveStart turns ref into a commit id. A full lowercase id is used
// as is; anything else ("HEAD", branch and tag names, "main~2") is
// resolved through the repository's references. An empty ref means HEAD.
func (r *Repository) ResolveStart(ref string) (object.ID, error) {
	if ref == "" {
		ref = "HEAD"
	}
	if id, err := object.ParseID(ref); err == nil {
		return id, nil
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMissingReference, ref, err)
	}
	id, err := object.ParseID(hash.String())
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMissingReference, ref, err)
	}
	return id, nil
}

// Branches lists local branch names, sorted as go-git returns them.
func (r *Repository) Branches() ([]string, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	return names, err
}
