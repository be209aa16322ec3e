package arbor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/aretw0/arbor/internal/adapters/memory"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/manifest"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/session"
)

// Interpreter is the high-level entry point for the Arbor library.
// It wraps the internal dispatcher and provides a simplified API for
// hosts: load a manifest, bind sources, dispatch lines per session.
type Interpreter struct {
	mu       sync.RWMutex
	engine   *runtime.Engine
	contract *manifest.Manifest

	resolver *registry.Resolver
	sessions *session.Manager
	store    ports.StateStore
	locker   ports.DistributedLocker
	logger   *slog.Logger
	metrics  *runtime.Metrics

	path string
	Name string
}

// Option defines a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithStore injects a session state store. Defaults to in-memory.
func WithStore(store ports.StateStore) Option {
	return func(i *Interpreter) {
		i.store = store
	}
}

// WithLocker enables distributed session locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(i *Interpreter) {
		i.locker = locker
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithMetrics enables prometheus instrumentation of dispatches.
func WithMetrics(m *runtime.Metrics) Option {
	return func(i *Interpreter) {
		i.metrics = m
	}
}

// New loads a manifest from path and initializes an Interpreter.
func New(path string, opts ...Option) (*Interpreter, error) {
	contract, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	i, err := NewFromManifest(contract, opts...)
	if err != nil {
		return nil, err
	}
	i.path = path
	return i, nil
}

// NewFromManifest initializes an Interpreter from an already built
// manifest. The manifest must have passed Validate.
func NewFromManifest(contract *manifest.Manifest, opts ...Option) (*Interpreter, error) {
	if contract == nil {
		return nil, fmt.Errorf("manifest is required")
	}

	i := &Interpreter{
		contract: contract,
		logger:   logging.NewNop(),
		Name:     contract.Name,
	}
	for _, opt := range opts {
		opt(i)
	}

	if i.store == nil {
		i.store = memory.NewStore()
	}

	sessionOpts := []session.Option{session.WithLogger(i.logger)}
	if i.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(i.locker))
	}
	i.sessions = session.NewManager(i.store, sessionOpts...)

	i.resolver = registry.NewResolver(contract.Sources)
	i.engine = i.buildEngine(contract)
	return i, nil
}

func (i *Interpreter) buildEngine(contract *manifest.Manifest) *runtime.Engine {
	engineOpts := []runtime.EngineOption{runtime.WithLogger(i.logger)}
	if i.metrics != nil {
		engineOpts = append(engineOpts, runtime.WithMetrics(i.metrics))
	}
	return runtime.NewEngine(contract, i.resolver, engineOpts...)
}

// Bind registers a loader for a source locator. Locators come from the
// manifest's sources table; binding must happen before the first command
// touching that source is dispatched.
func (i *Interpreter) Bind(locator string, loader registry.Loader) {
	i.resolver.Bind(locator, loader)
}

// BindModule registers an already built module for a source locator.
func (i *Interpreter) BindModule(locator string, module registry.Module) {
	i.resolver.BindModule(locator, module)
}

// Contract returns the manifest currently being interpreted.
func (i *Interpreter) Contract() *manifest.Manifest {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.contract
}

// Sessions returns the session manager.
func (i *Interpreter) Sessions() *session.Manager {
	return i.sessions
}

// Resolver returns the source resolver.
func (i *Interpreter) Resolver() *registry.Resolver {
	return i.resolver
}

// Prompt returns the manifest's REPL prompt, with a fallback.
func (i *Interpreter) Prompt() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.contract.Prompt != "" {
		return i.contract.Prompt
	}
	return "> "
}

// Interpret parses and dispatches one line against an explicit state.
// It is the session-free variant for hosts that manage state themselves.
func (i *Interpreter) Interpret(ctx context.Context, state domain.State, line string) (*domain.Result, domain.State) {
	i.mu.RLock()
	engine := i.engine
	i.mu.RUnlock()
	return engine.DispatchLine(ctx, state, line)
}

// Dispatch parses and dispatches one line for a managed session. The
// session is initialized from the manifest's state defaults on first
// use, the dispatch runs under the session lock, and the resulting
// state is persisted before the Result is returned.
func (i *Interpreter) Dispatch(ctx context.Context, sessionID, line string) (*domain.Result, error) {
	return i.withSession(ctx, sessionID, func(engine *runtime.Engine, state domain.State) (*domain.Result, domain.State) {
		return engine.DispatchLine(ctx, state, line)
	})
}

// DispatchCommand dispatches an already parsed command for a managed
// session, bypassing the grammar. Hosts with structured transports
// (HTTP, MCP) use this form.
func (i *Interpreter) DispatchCommand(ctx context.Context, sessionID string, cmd *domain.Command) (*domain.Result, error) {
	return i.withSession(ctx, sessionID, func(engine *runtime.Engine, state domain.State) (*domain.Result, domain.State) {
		return engine.Dispatch(ctx, state, cmd)
	})
}

func (i *Interpreter) withSession(ctx context.Context, sessionID string, fn func(*runtime.Engine, domain.State) (*domain.Result, domain.State)) (*domain.Result, error) {
	i.mu.RLock()
	engine := i.engine
	defaults := domain.State(i.contract.StateDefaults)
	i.mu.RUnlock()

	var result *domain.Result
	err := i.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		snapshot, err := i.store.Load(ctx, sessionID)
		if err != nil && !errors.Is(err, domain.ErrContextNotFound) {
			return fmt.Errorf("failed to load session: %w", err)
		}

		// Defaults first, snapshot on top: a key added to stateDefaults
		// after the session was created still resolves.
		state := defaults.Clone().Merge(snapshot)

		var next domain.State
		result, next = fn(engine, state)

		if err := i.store.Save(ctx, sessionID, next); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reload re-reads the manifest from disk and swaps the dispatcher.
// In-flight dispatches finish against the contract they started with.
func (i *Interpreter) Reload() error {
	if i.path == "" {
		return fmt.Errorf("interpreter was not loaded from a file")
	}
	contract, err := manifest.Load(i.path)
	if err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.contract = contract
	i.resolver.SetSources(contract.Sources)
	i.resolver.Clear()
	i.engine = i.buildEngine(contract)
	i.logger.Info("manifest reloaded", "path", i.path, "commands", len(contract.Commands))
	return nil
}

// Watch emits the manifest path whenever the file changes on disk.
// Callers typically follow each event with Reload.
func (i *Interpreter) Watch(ctx context.Context) (<-chan string, error) {
	if i.path == "" {
		return nil, fmt.Errorf("interpreter was not loaded from a file")
	}
	abs, err := filepath.Abs(i.path)
	if err != nil {
		return nil, err
	}
	return manifest.Watch(ctx, abs)
}
