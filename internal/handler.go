package internal

// HandlerFunc is the terminal handler of a procedure and the continuation
// passed to every stage.
// It receives a Context and returns the procedure result or an error.
type HandlerFunc func(c Context) (any, error)

// Stage is one step of a procedure pipeline.
//
// A stage either short-circuits by returning without calling next, or calls
// next exactly once, optionally with a derived Context. Whatever next returns
// travels back through the stage, which may observe or translate it.
//
// Example:
//
//	stage := rpcgate.NewStage("audit", func(c rpcgate.Context, next rpcgate.HandlerFunc) (any, error) {
//	    res, err := next(c)
//	    audit.Record(c.Path(), err)
//	    return res, err
//	})
type Stage interface {
	Name() string
	Handle(c Context, next HandlerFunc) (any, error)
}

// StageFunc adapts a function to the Stage interface.
type StageFunc func(c Context, next HandlerFunc) (any, error)

type namedStage struct {
	fn   StageFunc
	name string
}

// NewStage creates a named Stage from fn.
func NewStage(name string, fn StageFunc) Stage {
	return namedStage{name: name, fn: fn}
}

func (s namedStage) Name() string { return s.name }

func (s namedStage) Handle(c Context, next HandlerFunc) (any, error) {
	return s.fn(c, next)
}
