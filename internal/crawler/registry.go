package crawler

import (
	"sync"

	"github.com/jgivc/coursemirror/internal/entity"
)

// Registry is the shared list of download tasks accumulated during the crawl.
// Appends happen concurrently from crawl branches under a lock held only for
// the append itself, never across network or disk I/O.
type Registry struct {
	mu    sync.Mutex
	files []entity.File
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Append(batch []entity.File) {
	if len(batch) == 0 {
		return
	}

	r.mu.Lock()
	r.files = append(r.files, batch...)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.files)
}

// Snapshot returns the accumulated list. It must only be called once all
// crawl tasks have completed; from then on the list is static.
func (r *Registry) Snapshot() []entity.File {
	r.mu.Lock()
	defer r.mu.Unlock()

	files := make([]entity.File, len(r.files))
	copy(files, r.files)

	return files
}
