package proxy

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/thread-proxy/track"
)

// Registry owns a set of threads and the table of in-flight waitable calls.
// Exactly one thread is the runtime host thread; optionally one thread is
// designated the UI thread (which may or may not coincide with the host).
type Registry struct {
	mu      sync.Mutex
	threads []*Thread
	host    *Thread
	ui      *Thread
	nextID  uint32

	waitable *track.Table[*Call]
	closed   atomic.Bool
}

// ThreadOption configures a thread at creation.
type ThreadOption func(*Thread)

// BlockingDisallowed forbids the thread from issuing blocking dispatches.
// Synchronous dispatch from such a thread is a fatal usage error.
func BlockingDisallowed() ThreadOption {
	return func(t *Thread) { t.blockingAllowed = false }
}

// RegistryOption configures a registry at creation.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	hostName string
	hostOpts []ThreadOption
}

// WithHostName names the implicitly created host thread.
func WithHostName(name string) RegistryOption {
	return func(c *registryConfig) { c.hostName = name }
}

// WithHostOptions applies thread options to the implicitly created host
// thread, e.g. BlockingDisallowed for browser-style embeddings.
func WithHostOptions(opts ...ThreadOption) RegistryOption {
	return func(c *registryConfig) { c.hostOpts = opts }
}

// NewRegistry creates a registry with its host thread already registered.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := registryConfig{hostName: "main"}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Registry{waitable: track.NewTable[*Call]()}
	r.host = r.NewThread(cfg.hostName, cfg.hostOpts...)
	return r
}

// NewThread registers a new thread. The returned Thread is immediately a
// valid dispatch target; its owning goroutine must drain it.
func (r *Registry) NewThread(name string, opts ...ThreadOption) *Thread {
	t := &Thread{reg: r, blockingAllowed: true}
	t.SetName(name)
	for _, opt := range opts {
		opt(t)
	}

	r.mu.Lock()
	r.nextID++
	t.id = r.nextID
	r.threads = append(r.threads, t)
	r.mu.Unlock()

	Logger().Debug("thread registered",
		zap.Uint32("id", t.id),
		zap.String("name", t.Name()))
	return t
}

// Host returns the runtime host thread.
func (r *Registry) Host() *Thread {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.host
}

// DesignateUI marks t as the UI thread. Passing the host thread is valid:
// the two roles coincide in single-context embeddings.
func (r *Registry) DesignateUI(t *Thread) {
	r.mu.Lock()
	r.ui = t
	r.mu.Unlock()
}

// UI returns the UI thread, or nil when none was designated.
func (r *Registry) UI() *Thread {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ui
}

// Threads returns a snapshot of all registered threads.
func (r *Registry) Threads() []*Thread {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Thread, len(r.threads))
	copy(out, r.threads)
	return out
}

// ProcessHostQueue drains the host thread's queue on the calling goroutine.
// Only the goroutine owning the host thread may call this.
func (r *Registry) ProcessHostQueue() {
	r.Host().ProcessQueuedCalls()
}

// Waitable exposes the in-flight waitable call table, e.g. to subscribe to
// lifecycle events.
func (r *Registry) Waitable() *track.Table[*Call] {
	return r.waitable
}

// Close shuts the registry down. Further dispatches fail. Waitable handles
// never released by their issuers are dropped and reported as a leak error.
func (r *Registry) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := r.waitable.Close()
	if err != nil {
		Logger().Warn("waitable call handles leaked", zap.Error(err))
	}
	return err
}
