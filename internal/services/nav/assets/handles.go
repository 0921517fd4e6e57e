package assets

import (
	"sync"

	"github.com/google/uuid"
)

// Handle is an owned reference to a resolved image payload, dereferenceable
// over HTTP at its URI until released.
type Handle struct {
	registry *HandleRegistry
	token    string
	name     string
	payload  []byte
}

// URI returns the HTTP path serving this handle's payload.
func (h *Handle) URI() string {
	return "/api/blob/" + h.token
}

// Bytes returns the payload bytes.
func (h *Handle) Bytes() []byte {
	return h.payload
}

// Release invalidates the handle. Its URI stops resolving; releasing twice is
// a no-op.
func (h *Handle) Release() {
	h.registry.release(h)
}

// HandleRegistry tracks live display handles. At most one live handle exists
// per image name: minting a handle for a name releases the previous one
// first, bounding live handles at one per name for the process lifetime.
type HandleRegistry struct {
	mu      sync.Mutex
	byToken map[string]*Handle
	byName  map[string]*Handle
}

func NewHandleRegistry() *HandleRegistry {
	return &HandleRegistry{
		byToken: make(map[string]*Handle),
		byName:  make(map[string]*Handle),
	}
}

// Replace releases any live handle for name and mints a new one over payload.
func (r *HandleRegistry) Replace(name string, payload []byte) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.byName[name]; ok {
		delete(r.byToken, previous.token)
		delete(r.byName, name)
	}

	handle := &Handle{
		registry: r,
		token:    uuid.NewString(),
		name:     name,
		payload:  payload,
	}
	r.byToken[handle.token] = handle
	r.byName[name] = handle
	return handle
}

// Resolve returns the live handle for token, if any.
func (r *HandleRegistry) Resolve(token string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handle, ok := r.byToken[token]
	return handle, ok
}

func (r *HandleRegistry) release(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if live, ok := r.byToken[h.token]; !ok || live != h {
		return
	}
	delete(r.byToken, h.token)
	delete(r.byName, h.name)
}
