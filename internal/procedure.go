package internal

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ProcedureType distinguishes read-only queries from state-changing mutations.
type ProcedureType string

const (
	ProcedureQuery    ProcedureType = "query"
	ProcedureMutation ProcedureType = "mutation"
)

// Procedure is a named remote operation: an ordered stage list around a
// terminal handler. The stage list is frozen at construction.
type Procedure struct {
	pipeline *Pipeline
	name     string
	typ      ProcedureType
}

// Name returns the procedure name (its path).
func (p *Procedure) Name() string { return p.name }

// Type returns whether the procedure is a query or a mutation.
func (p *Procedure) Type() ProcedureType { return p.typ }

// Stages returns the stage names in execution order.
func (p *Procedure) Stages() []string { return p.pipeline.Stages() }

// Call runs the procedure pipeline for a single call.
func (p *Procedure) Call(c Context) (any, error) {
	return p.pipeline.Execute(c)
}

// Builder composes stages into procedures.
// Builders are immutable: Use returns a new Builder and never alters the receiver,
// so a base composition can be shared by several derived ones.
type Builder struct {
	stages []Stage
}

// NewBuilder creates a builder with the given stages, outermost first.
func NewBuilder(stages ...Stage) Builder {
	return Builder{stages: slices.Clone(stages)}
}

// Use returns a builder with stages appended after the existing ones.
func (b Builder) Use(stages ...Stage) Builder {
	next := make([]Stage, 0, len(b.stages)+len(stages))
	next = append(next, b.stages...)
	next = append(next, stages...)
	return Builder{stages: next}
}

// Stages returns the stage names in execution order.
func (b Builder) Stages() []string {
	names := make([]string, 0, len(b.stages))
	for _, s := range b.stages {
		if s != nil {
			names = append(names, s.Name())
		}
	}
	return names
}

// Query creates a query procedure.
func (b Builder) Query(name string, h HandlerFunc) *Procedure {
	return b.procedure(name, ProcedureQuery, h)
}

// Mutation creates a mutation procedure.
func (b Builder) Mutation(name string, h HandlerFunc) *Procedure {
	return b.procedure(name, ProcedureMutation, h)
}

func (b Builder) procedure(name string, typ ProcedureType, h HandlerFunc) *Procedure {
	return &Procedure{
		name:     strings.TrimSpace(name),
		typ:      typ,
		pipeline: NewPipeline(h, b.stages...),
	}
}

// Registry is a concurrency-safe set of procedures keyed by name.
type Registry struct {
	procs map[string]*Procedure
	order []string
	mu    sync.RWMutex
}

// NewRegistry creates a registry holding the given procedures.
// Panics on invalid or duplicate procedures.
func NewRegistry(procs ...*Procedure) *Registry {
	r := &Registry{procs: make(map[string]*Procedure, len(procs))}
	r.MustRegister(procs...)
	return r
}

// Register adds procedures to the registry.
// Returns ErrEmptyProcedureName, ErrNilHandler or ErrDuplicateProcedure.
// Nothing is registered if any procedure is rejected.
func (r *Registry) Register(procs ...*Procedure) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(procs))
	for _, p := range procs {
		if p == nil || p.pipeline.handler == nil {
			return ErrNilHandler
		}
		if p.name == "" {
			return ErrEmptyProcedureName
		}
		if _, ok := r.procs[p.name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateProcedure, p.name)
		}
		if _, ok := seen[p.name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateProcedure, p.name)
		}
		seen[p.name] = struct{}{}
	}

	for _, p := range procs {
		r.procs[p.name] = p
		r.order = append(r.order, p.name)
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(procs ...*Procedure) {
	if err := r.Register(procs...); err != nil {
		panic(err)
	}
}

// Lookup returns the procedure registered under name.
func (r *Registry) Lookup(name string) (*Procedure, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.procs[name]
	return p, ok
}

// Procedures returns all procedures in registration order.
func (r *Registry) Procedures() []*Procedure {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Procedure, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.procs[name])
	}
	return out
}

// Handle adapts a typed handler to HandlerFunc.
// The input must have been placed on the Context by the validation stage.
func Handle[In, Out any](fn func(c Context, in In) (Out, error)) HandlerFunc {
	return func(c Context) (any, error) {
		raw := c.Input()
		if raw == nil {
			return nil, ErrInternal("", WithError(ErrInputNotValidated))
		}
		in, ok := raw.(In)
		if !ok {
			return nil, ErrInternal("", WithError(fmt.Errorf("%w: %T", ErrUnexpectedInputType, raw)))
		}
		return fn(c, in)
	}
}

// Schema parses and validates raw procedure input into T.
type Schema[T any] interface {
	Parse(raw json.RawMessage) (T, error)
}

// SchemaFunc adapts a function to the Schema interface.
type SchemaFunc[T any] func(raw json.RawMessage) (T, error)

// Parse calls f(raw).
func (f SchemaFunc[T]) Parse(raw json.RawMessage) (T, error) {
	return f(raw)
}
