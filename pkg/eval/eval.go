package eval

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	gemalog "github.com/noah-isme/gema-eval-go/pkg/log"
	gematrace "github.com/noah-isme/gema-eval-go/pkg/trace"
)

// Evaluation executes a named set of test cases against a task function and a
// list of scorers. Construct with New and execute with Run.
type Evaluation[I, O any] struct {
	name         string
	cases        []I
	task         Task[I, O]
	scorers      []Scorer[I, O]
	parallelism  int
	experimentID string
	tracer       oteltrace.Tracer
	logger       zerolog.Logger
}

type options struct {
	parallelism  int
	experimentID string
	tracer       oteltrace.Tracer
	logger       *zerolog.Logger
}

// Option configures an Evaluation.
type Option func(*options)

// WithParallelism sets the maximum number of concurrently executing test
// cases. A value of 1 runs the cases serially in input order.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

// WithExperiment associates the run with a registered experiment so emitted
// spans are routed to it.
func WithExperiment(experimentID string) Option {
	return func(o *options) { o.experimentID = experimentID }
}

// WithTracer enables span emission around the run and each test case.
func WithTracer(tracer oteltrace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithLogger overrides the SDK logger for this evaluation.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

type definition struct {
	Name        string `validate:"required"`
	Parallelism int    `validate:"min=1"`
}

// New builds an evaluation over the given cases. The task is required; the
// scorer list may be empty, in which case results carry no scores.
func New[I, O any](name string, cases []I, task Task[I, O], scorers []Scorer[I, O], opts ...Option) (*Evaluation[I, O], error) {
	o := options{parallelism: 1}
	for _, opt := range opts {
		opt(&o)
	}

	if task == nil {
		return nil, fmt.Errorf("a task function is required")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(definition{Name: name, Parallelism: o.parallelism}); err != nil {
		return nil, fmt.Errorf("invalid evaluation definition: %w", err)
	}

	logger := gemalog.Logger()
	if o.logger != nil {
		logger = *o.logger
	}

	return &Evaluation[I, O]{
		name:         name,
		cases:        cases,
		task:         task,
		scorers:      scorers,
		parallelism:  o.parallelism,
		experimentID: o.experimentID,
		tracer:       o.tracer,
		logger:       logger,
	}, nil
}

// Run executes every test case and returns the assembled report. It never
// fails as a whole: task failures surface only on their own case and in the
// error count. Cancelling the context records the remaining cases as failures
// carrying the context error.
func (e *Evaluation[I, O]) Run(ctx context.Context) Results[I, O] {
	if e.tracer != nil {
		var span oteltrace.Span
		ctx, span = e.tracer.Start(ctx, "evaluation", oteltrace.WithAttributes(
			attribute.String("evaluation.name", e.name),
		))
		if e.experimentID != "" {
			span.SetAttributes(
				gematrace.AttrParent.String("experiment_id:"+e.experimentID),
				gematrace.AttrParentType.String("experiment"),
			)
		}
		defer span.End()
	}

	// One slot per case, written only by that case's goroutine. Reading the
	// slice in index order after the join restores input order regardless of
	// completion order.
	results := make([]Result[I, O], len(e.cases))

	if e.parallelism <= 1 {
		for i, input := range e.cases {
			results[i] = e.evaluateOne(ctx, input)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.parallelism)
		for i, input := range e.cases {
			i, input := i, input
			g.Go(func() error {
				results[i] = e.evaluateOne(ctx, input)
				return nil
			})
		}
		_ = g.Wait()
	}

	scorerNames := make([]string, 0, len(e.scorers))
	for _, s := range e.scorers {
		scorerNames = append(scorerNames, s.Name())
	}

	return Results[I, O]{
		Name:    e.name,
		Results: results,
		Summary: newSummary(results, scorerNames),
	}
}

func (e *Evaluation[I, O]) evaluateOne(ctx context.Context, input I) Result[I, O] {
	var span oteltrace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, "evaluation.task")
		defer span.End()
	}

	if err := ctx.Err(); err != nil {
		if span != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		return Result[I, O]{Input: input, Err: fmt.Errorf("test case not run: %w", err)}
	}

	start := time.Now()
	output, err := e.runTask(ctx, input)
	duration := time.Since(start)

	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return Result[I, O]{Input: input, Duration: duration, Err: err}
	}

	scores := make(map[string]float64, len(e.scorers))
	for _, scorer := range e.scorers {
		score, serr := e.runScorer(ctx, scorer, input, output)
		if serr != nil {
			e.logger.Debug().
				Str("evaluation", e.name).
				Str("scorer", scorer.Name()).
				Err(serr).
				Msg("scorer failed, score dropped")
			continue
		}
		scores[scorer.Name()] = score
		if span != nil {
			span.SetAttributes(attribute.Float64("score."+scorer.Name(), score))
		}
	}

	return Result[I, O]{Input: input, Output: output, Scores: scores, Duration: duration}
}

// runTask invokes the task, converting a panic into a per-case failure so one
// misbehaving case cannot take down the batch.
func (e *Evaluation[I, O]) runTask(ctx context.Context, input I) (output O, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return e.task(ctx, input)
}

func (e *Evaluation[I, O]) runScorer(ctx context.Context, scorer Scorer[I, O], input I, output O) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scorer panicked: %v", r)
		}
	}()
	return scorer.Score(ctx, input, output)
}
