// Package runtime hosts the dispatcher: the state machine that takes a
// canonical command through Lookup, Validate and Execute, and reconciles
// session state afterwards. It also owns the template evaluator and the
// side-effect rules, which only the dispatcher applies.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/params"
	"github.com/aretw0/arbor/internal/parser"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/manifest"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/schema"
)

// Engine dispatches canonical commands against an immutable manifest.
//
// The engine is re-entrant: dispatching holds no engine-local mutable state,
// only the manifest (immutable after load), the resolver (internally
// synchronized) and the state explicitly passed in and returned. Hosts may
// run concurrent dispatches over one Engine, provided each session's state
// is serialized externally (see pkg/session).
type Engine struct {
	contract *manifest.Manifest
	resolver *registry.Resolver
	parser   *parser.Parser
	logger   *slog.Logger
	metrics  *Metrics
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics enables prometheus instrumentation of dispatches.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates a dispatcher over a manifest and a source resolver.
func NewEngine(contract *manifest.Manifest, resolver *registry.Resolver, opts ...EngineOption) *Engine {
	e := &Engine{
		contract: contract,
		resolver: resolver,
		parser:   parser.New(contract),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Contract returns the manifest the engine dispatches against.
func (e *Engine) Contract() *manifest.Manifest {
	return e.contract
}

// Resolver returns the engine's source resolver.
func (e *Engine) Resolver() *registry.Resolver {
	return e.resolver
}

// DispatchLine parses one line of input and dispatches it. Malformed
// grammar becomes an error Result, not a Go error; the state is returned
// unchanged in that case.
func (e *Engine) DispatchLine(ctx context.Context, state domain.State, line string) (*domain.Result, domain.State) {
	cmd, err := e.parser.Parse(line)
	if err != nil {
		return domain.Failure(err.Error()), state
	}
	return e.Dispatch(ctx, state, cmd)
}

// Dispatch runs the Lookup -> Validate -> Execute machine for one command
// and applies declared side effects on success. Every failure inside the
// machine is converted into a Result error; nothing propagates to the
// caller as a Go error or panic.
func (e *Engine) Dispatch(ctx context.Context, state domain.State, cmd *domain.Command) (*domain.Result, domain.State) {
	started := time.Now()

	result, next := e.dispatch(ctx, state, cmd)

	if e.metrics != nil {
		e.metrics.Observe(cmd.Name, result, time.Since(started))
	}
	return result, next
}

func (e *Engine) dispatch(ctx context.Context, state domain.State, cmd *domain.Command) (*domain.Result, domain.State) {
	// Lookup.
	spec, ok := e.contract.Command(cmd.Name)
	if !ok {
		e.logger.Debug("command not found", "command", cmd.Name)
		return domain.Failure(fmt.Sprintf("Unknown command: %s", cmd.Name)), state
	}

	// Validate.
	args, err := params.Resolve(spec, cmd.Args, state)
	if err != nil {
		e.logger.Debug("validation failed", "command", cmd.Name, "err", err)
		return domain.Failure(joinValidation(err)), state
	}
	resolved := &domain.Command{Name: cmd.Name, Args: args}

	// Execute.
	var result *domain.Result
	switch spec.Kind() {
	case manifest.CommandInternal:
		result = e.executeInternal(spec, resolved)
	case manifest.CommandExternalMethod:
		result = e.executeExternal(ctx, spec, resolved)
	default:
		// Unreachable for validated manifests.
		result = domain.Failure(fmt.Sprintf("command %q has unsupported type %q", spec.Name, spec.Type))
	}
	// Side effects and the exit signal apply only to successful
	// executions. A failed exit command keeps the session alive.
	if !result.OK() {
		e.logger.Debug("command failed", "command", cmd.Name, "err", result.Error)
		return result, state
	}
	result.Exit = spec.Exit

	next := ApplyEffects(state, resolved, result, spec)
	e.logger.Debug("command succeeded", "command", cmd.Name)
	return result, next
}

func (e *Engine) executeInternal(spec *manifest.CommandSpec, cmd *domain.Command) *domain.Result {
	if spec.SuccessOutput == "" {
		return domain.Success(nil)
	}
	return domain.Success(Interpolate(spec.SuccessOutput, cmd.Args))
}

func (e *Engine) executeExternal(ctx context.Context, spec *manifest.CommandSpec, cmd *domain.Command) *domain.Result {
	module, err := e.resolver.Resolve(ctx, spec.Source)
	if err != nil {
		return domain.Failure(err.Error())
	}

	fn, ok := module[spec.MethodName]
	if !ok {
		return domain.Failure(fmt.Sprintf(
			"method %q not found in source %q; available exports: %s",
			spec.MethodName, spec.Source, strings.Join(module.Exports(), ", ")))
	}

	output, err := invoke(ctx, fn, cmd.Args)
	if err != nil {
		return domain.Failure(err.Error())
	}

	// successOutput, when present, post-processes the handler result.
	if spec.SuccessOutput != "" {
		bag := make(map[string]any, len(cmd.Args)+1)
		for k, v := range cmd.Args {
			bag[k] = v
		}
		bag["result"] = output
		return domain.Success(Interpolate(spec.SuccessOutput, bag))
	}
	return domain.Success(output)
}

// invoke runs a handler, converting panics into errors. Handlers are
// trusted but their failures must surface as Result errors, never crash a
// host serving other sessions.
func invoke(ctx context.Context, fn registry.HandlerFunc, args map[string]any) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return fn(ctx, args)
}

// joinValidation flattens collected validation errors into the single
// message a Result carries.
func joinValidation(err error) string {
	if aggr, ok := err.(*schema.AggregateError); ok {
		return strings.Join(aggr.Messages(), "; ")
	}
	return err.Error()
}
