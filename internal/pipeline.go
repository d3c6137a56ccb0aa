package internal

// Pipeline runs an ordered list of stages around a terminal handler.
// The first stage is the outermost one.
type Pipeline struct {
	handler HandlerFunc
	stages  []Stage
}

// NewPipeline freezes stages in the given order.
// Nil stages are skipped.
func NewPipeline(handler HandlerFunc, stages ...Stage) *Pipeline {
	frozen := make([]Stage, 0, len(stages))
	for _, s := range stages {
		if s != nil {
			frozen = append(frozen, s)
		}
	}
	return &Pipeline{handler: handler, stages: frozen}
}

// Execute runs the pipeline for a single call.
func (p *Pipeline) Execute(c Context) (any, error) {
	return p.run(0, c)
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

func (p *Pipeline) run(i int, c Context) (any, error) {
	// A cancelled caller never reaches the next stage or the handler.
	if err := c.Context().Err(); err != nil {
		return nil, err
	}

	if i >= len(p.stages) {
		if p.handler == nil {
			return nil, ErrInternal("", WithError(ErrNilHandler))
		}
		return p.handler(c)
	}

	return p.stages[i].Handle(c, func(next Context) (any, error) {
		return p.run(i+1, next)
	})
}
