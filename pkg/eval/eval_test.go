package eval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	gematrace "github.com/noah-isme/gema-eval-go/pkg/trace"
)

var errBoom = errors.New("task exploded")

func identityTask(ctx context.Context, input string) (string, error) {
	return input, nil
}

func constantScorer(score float64) Scorer[string, string] {
	return NewScorer("constant", func(ctx context.Context, input, output string) (float64, error) {
		return score, nil
	})
}

func TestRunLengthMatchScenario(t *testing.T) {
	lengthMatch := NewScorer("length_match", func(ctx context.Context, input, output string) (float64, error) {
		if len(input) == len(output) {
			return 1.0, nil
		}
		return 0.0, nil
	})

	e, err := New("length-match", []string{"a", "bb", "ccc"}, identityTask, []Scorer[string, string]{lengthMatch})
	require.NoError(t, err)

	results := e.Run(context.Background())
	require.Len(t, results.Results, 3)
	for _, r := range results.Results {
		require.True(t, r.IsSuccess())
		score, ok := r.Score("length_match")
		require.True(t, ok)
		require.Equal(t, 1.0, score)
	}

	stats := results.Summary.ScoreStatistics["length_match"]
	require.Equal(t, 1.0, stats.Mean)
	require.Equal(t, 1.0, stats.Min)
	require.Equal(t, 1.0, stats.Max)
	require.Equal(t, 1.0, stats.Median)
	require.Equal(t, 0.0, stats.StdDev)
	require.Equal(t, 3, stats.Count)
}

func TestRunTaskFailureIsolated(t *testing.T) {
	task := func(ctx context.Context, input int) (int, error) {
		if input == 3 {
			return 0, errBoom
		}
		return input * 2, nil
	}
	scorer := NewScorer("half", func(ctx context.Context, input, output int) (float64, error) {
		return 0.5, nil
	})

	e, err := New("failure-isolation", []int{1, 2, 3, 4}, task, []Scorer[int, int]{scorer})
	require.NoError(t, err)

	results := e.Run(context.Background())
	require.Len(t, results.Results, 4)

	failed := results.Results[2]
	require.False(t, failed.IsSuccess())
	require.ErrorIs(t, failed.Err, errBoom)
	require.Empty(t, failed.Scores)

	require.Equal(t, 3, results.Summary.SuccessCount)
	require.Equal(t, 1, results.Summary.ErrorCount)
	require.Equal(t, 4, results.Summary.TotalCount)
	require.Equal(t, 3, results.Summary.ScoreStatistics["half"].Count)
}

func TestRunMultipleFailures(t *testing.T) {
	task := func(ctx context.Context, input int) (int, error) {
		if input == 1 || input == 3 {
			return 0, errBoom
		}
		return input, nil
	}

	e, err := New("multi-failure", []int{0, 1, 2, 3, 4}, task, []Scorer[int, int]{
		NewScorer("constant", func(ctx context.Context, input, output int) (float64, error) { return 1.0, nil }),
	})
	require.NoError(t, err)

	results := e.Run(context.Background())
	require.Equal(t, 2, results.Summary.ErrorCount)
	require.Equal(t, 3, results.Summary.SuccessCount)
	for _, i := range []int{0, 2, 4} {
		require.NotEmpty(t, results.Results[i].Scores)
	}
	for _, i := range []int{1, 3} {
		require.False(t, results.Results[i].IsSuccess())
	}
}

func TestRunScorerFailureDropped(t *testing.T) {
	flaky := NewScorer("flaky", func(ctx context.Context, input, output int) (float64, error) {
		if input == 2 {
			return 0, errors.New("scorer exploded")
		}
		return 1.0, nil
	})
	steady := NewScorer("steady", func(ctx context.Context, input, output int) (float64, error) {
		return 0.5, nil
	})

	e, err := New("scorer-isolation", []int{0, 1, 2, 3, 4},
		func(ctx context.Context, input int) (int, error) { return input, nil },
		[]Scorer[int, int]{flaky, steady})
	require.NoError(t, err)

	results := e.Run(context.Background())
	require.Equal(t, 5, results.Summary.SuccessCount)

	// The failing pair drops only its own score.
	affected := results.Results[2]
	require.True(t, affected.IsSuccess())
	_, ok := affected.Score("flaky")
	require.False(t, ok)
	_, ok = affected.Score("steady")
	require.True(t, ok)

	require.Equal(t, 4, results.Summary.ScoreStatistics["flaky"].Count)
	require.Equal(t, 5, results.Summary.ScoreStatistics["steady"].Count)
}

func TestRunSerialMatchesConcurrent(t *testing.T) {
	cases := make([]int, 20)
	for i := range cases {
		cases[i] = i
	}
	task := func(ctx context.Context, input int) (string, error) {
		// Uneven completion order under parallelism.
		time.Sleep(time.Duration(input%4) * time.Millisecond)
		if input%7 == 0 {
			return "", fmt.Errorf("failure for %d", input)
		}
		return fmt.Sprintf("out-%d", input), nil
	}
	scorers := []Scorer[int, string]{
		NewScorer("mod", func(ctx context.Context, input int, output string) (float64, error) {
			return float64(input%5) / 5, nil
		}),
	}

	serial, err := New("determinism", cases, task, scorers)
	require.NoError(t, err)
	concurrent, err := New("determinism", cases, task, scorers, WithParallelism(4))
	require.NoError(t, err)

	a := serial.Run(context.Background())
	b := concurrent.Run(context.Background())

	require.Equal(t, len(a.Results), len(b.Results))
	for i := range a.Results {
		require.Equal(t, a.Results[i].Input, b.Results[i].Input)
		require.Equal(t, a.Results[i].Output, b.Results[i].Output)
		require.Equal(t, a.Results[i].Scores, b.Results[i].Scores)
		require.Equal(t, a.Results[i].IsSuccess(), b.Results[i].IsSuccess())
	}
	require.Equal(t, a.Summary.TotalCount, b.Summary.TotalCount)
	require.Equal(t, a.Summary.SuccessCount, b.Summary.SuccessCount)
	require.Equal(t, a.Summary.ErrorCount, b.Summary.ErrorCount)
	require.Equal(t, a.Summary.ScoreStatistics, b.Summary.ScoreStatistics)
}

func TestRunConcurrentPreservesInputOrder(t *testing.T) {
	cases := []string{"e", "d", "c", "b", "a"}
	task := func(ctx context.Context, input string) (string, error) {
		time.Sleep(time.Duration(input[0]%3) * time.Millisecond)
		return input, nil
	}

	e, err := New("ordering", cases, task, nil, WithParallelism(5))
	require.NoError(t, err)

	results := e.Run(context.Background())
	for i, r := range results.Results {
		require.Equal(t, cases[i], r.Input)
	}
}

func TestRunTaskPanicCaptured(t *testing.T) {
	task := func(ctx context.Context, input int) (int, error) {
		if input == 1 {
			panic("unexpected input")
		}
		return input, nil
	}

	e, err := New("panic-capture", []int{0, 1, 2}, task, nil)
	require.NoError(t, err)

	results := e.Run(context.Background())
	require.Equal(t, 1, results.Summary.ErrorCount)
	require.False(t, results.Results[1].IsSuccess())
	require.Contains(t, results.Results[1].Err.Error(), "panicked")
}

func TestRunScorerPanicDropped(t *testing.T) {
	scorer := NewScorer("panicky", func(ctx context.Context, input, output int) (float64, error) {
		panic("scorer bug")
	})

	e, err := New("scorer-panic", []int{0, 1}, func(ctx context.Context, input int) (int, error) {
		return input, nil
	}, []Scorer[int, int]{scorer})
	require.NoError(t, err)

	results := e.Run(context.Background())
	require.Equal(t, 2, results.Summary.SuccessCount)
	require.Empty(t, results.Summary.ScoreStatistics)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, err := New("cancelled", []string{"a", "b"}, identityTask, []Scorer[string, string]{constantScorer(1)})
	require.NoError(t, err)

	results := e.Run(ctx)
	require.Equal(t, 2, results.Summary.ErrorCount)
	for _, r := range results.Results {
		require.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestRunEmptyCases(t *testing.T) {
	e, err := New("empty", nil, identityTask, []Scorer[string, string]{constantScorer(1)})
	require.NoError(t, err)

	results := e.Run(context.Background())
	require.Equal(t, 0, results.Summary.TotalCount)
	require.Equal(t, 0.0, results.Summary.SuccessRate())
	require.Equal(t, 0.0, results.Summary.ErrorRate())
	require.NotEmpty(t, results.Report())
}

func TestRunEmitsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	e, err := New("traced", []string{"a", "bb"}, identityTask,
		[]Scorer[string, string]{constantScorer(0.8)},
		WithTracer(tp.Tracer("test")),
		WithExperiment("exp-123"),
	)
	require.NoError(t, err)

	e.Run(context.Background())

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	var rootSeen bool
	for _, span := range spans {
		if span.Name() != "evaluation" {
			continue
		}
		rootSeen = true
		attrs := span.Attributes()
		var parent string
		for _, attr := range attrs {
			if attr.Key == gematrace.AttrParent {
				parent = attr.Value.AsString()
			}
		}
		require.Equal(t, "experiment_id:exp-123", parent)
	}
	require.True(t, rootSeen)

	var caseSpans int
	for _, span := range spans {
		if !strings.HasPrefix(span.Name(), "evaluation.task") {
			continue
		}
		caseSpans++
		var scored bool
		for _, attr := range span.Attributes() {
			if attr.Key == "score.constant" {
				scored = true
				require.Equal(t, 0.8, attr.Value.AsFloat64())
			}
		}
		require.True(t, scored)
	}
	require.Equal(t, 2, caseSpans)
}

func TestNewRejectsInvalidDefinitions(t *testing.T) {
	_, err := New[string, string]("no-task", []string{"a"}, nil, nil)
	require.Error(t, err)

	_, err = New("", []string{"a"}, identityTask, nil)
	require.Error(t, err)

	_, err = New("bad-parallelism", []string{"a"}, identityTask, nil, WithParallelism(0))
	require.Error(t, err)
}
