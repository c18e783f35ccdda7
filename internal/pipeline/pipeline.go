package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-qualifier/internal/postings"
)

const DefaultConcurrency = 4

// Stage is a single step applied to a batch of postings.
type Stage interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, p *postings.Postings) (*postings.Postings, Step, error)
}

// Step describes the result of executing a stage.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a stage.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

type Pipeline struct {
	stages []Stage
	logger *zap.Logger
}

func New(stages []Stage, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{stages: stages, logger: logger}
}

// DisableByName marks a stage with the provided name as disabled while keeping it in the list.
func (p *Pipeline) DisableByName(name, reason string) {
	for _, stage := range p.stages {
		if stage.Name() == name {
			stage.Disable(reason)
		}
	}
}

// Run executes the enabled stages sequentially. It stops at the first stage
// error, and stops early once no postings are left.
func (p *Pipeline) Run(ctx context.Context, batch *postings.Postings) (*postings.Postings, error) {
	for _, stage := range p.stages {
		if !stage.IsEnabled() {
			p.logger.Info("stage disabled", zap.String("name", stage.Name()))
			continue
		}

		if batch.Len() == 0 {
			p.logger.Info("no postings left, skipping the rest of stages", zap.String("name", stage.Name()))
			break
		}

		next, info, err := stage.Apply(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", stage.Name(), err)
		}

		p.logger.Info("pipeline step",
			zap.String("name", stage.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		batch = next
	}

	return batch, nil
}

// Describe returns status entries for every stage.
func (p *Pipeline) Describe() []Status {
	statuses := make([]Status, 0, len(p.stages))
	for _, stage := range p.stages {
		if reporter, ok := stage.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    stage.Name(),
			Enabled: stage.IsEnabled(),
		})
	}
	return statuses
}

// forEach calls fn for every posting with at most limit calls in flight.
func forEach(ctx context.Context, batch *postings.Postings, limit int, fn func(ctx context.Context, posting *postings.Posting)) error {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, posting := range batch.Items {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(gctx, posting)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// toggle carries the enabled state shared by every stage.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }
