package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// Source lists raw inbound messages and loads them by id. Whatever transport
// delivers mail in a deployment, the sweeper only ever consumes it through
// this seam.
type Source interface {
	// List returns the ids of all messages currently available
	List(ctx context.Context) ([]string, error)
	// Load opens the raw MIME content of one message
	Load(ctx context.Context, id string) (io.ReadCloser, error)
}

// DirSource serves .eml files dropped into a local inbox directory.
type DirSource struct {
	dir string
}

// NewDirSource creates a DirSource rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// List returns the .eml filenames in the inbox directory, sorted.
func (s *DirSource) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".eml") {
			ids = append(ids, entry.Name())
		}
	}

	sort.Strings(ids)
	return ids, nil
}

// Load opens one message by filename.
func (s *DirSource) Load(_ context.Context, id string) (io.ReadCloser, error) {
	if id != filepath.Base(id) {
		return nil, fmt.Errorf("invalid message id %q", id)
	}

	f, err := os.Open(filepath.Join(s.dir, id))
	if err != nil {
		return nil, fmt.Errorf("failed to open message: %w", err)
	}
	return f, nil
}

// CollectJobs parses every message in the source into document jobs. A
// message that cannot be read or parsed is skipped and reported in errs; one
// broken message never aborts the sweep.
func CollectJobs(ctx context.Context, src Source) (jobs []types.DocumentJob, errs []error) {
	ids, err := src.List(ctx)
	if err != nil {
		return nil, []error{err}
	}

	for _, id := range ids {
		rc, err := src.Load(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("message %s: %w", id, err))
			continue
		}

		email, err := ParseEmail(rc)
		_ = rc.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("message %s: %w", id, err))
			continue
		}

		jobs = append(jobs, JobsFromEmail(email)...)
	}

	return jobs, errs
}
