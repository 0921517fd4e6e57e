package assets

import (
	"context"
	"sync"
)

type fakeLookup struct {
	response LookupResponse
	err      error
	calls    int
}

func (f *fakeLookup) Lookup(ctx context.Context, name string) (LookupResponse, error) {
	f.calls++
	if f.err != nil {
		return LookupResponse{}, f.err
	}
	return f.response, nil
}

type lookupFunc func(ctx context.Context, name string) (LookupResponse, error)

func (f lookupFunc) Lookup(ctx context.Context, name string) (LookupResponse, error) {
	return f(ctx, name)
}

type fakeFetcher struct {
	mu      sync.Mutex
	payload []byte
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func (f *fakeFetcher) fetchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memoryStore is an in-memory storage.Store. An optional readBarrier makes
// every GetOrInit caller wait until all expected readers have read, forcing
// the whole-table read-modify-write race deterministic in tests.
type memoryStore struct {
	mu          sync.Mutex
	values      map[string][]byte
	reads       int
	writes      int
	readBarrier *sync.WaitGroup
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string][]byte)}
}

func (s *memoryStore) Close() error { return nil }

func (s *memoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *memoryStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *memoryStore) GetOrInit(ctx context.Context, key string, def []byte) ([]byte, error) {
	s.mu.Lock()
	s.reads++
	value, ok := s.values[key]
	if !ok {
		s.values[key] = append([]byte(nil), def...)
		value = s.values[key]
	}
	value = append([]byte(nil), value...)
	s.mu.Unlock()

	if s.readBarrier != nil {
		s.readBarrier.Done()
		s.readBarrier.Wait()
	}
	return value, nil
}

type recordingReporter struct {
	mu        sync.Mutex
	started   int
	fractions []float64
	done      int
}

func (r *recordingReporter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *recordingReporter) Set(fraction float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fractions = append(r.fractions, fraction)
}

func (r *recordingReporter) Done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
}
