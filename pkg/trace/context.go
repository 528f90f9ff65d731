package trace

import (
	"context"
	"strings"
)

type parentContextKey struct{}

var parentKey = parentContextKey{}

// WithProject binds spans started under ctx to the given project.
func WithProject(ctx context.Context, projectID string) context.Context {
	return withParent(ctx, "project_id:"+projectID)
}

// WithProjectName binds spans started under ctx to the named project.
func WithProjectName(ctx context.Context, name string) context.Context {
	return withParent(ctx, "project_name:"+name)
}

// WithExperiment binds spans started under ctx to the given experiment.
func WithExperiment(ctx context.Context, experimentID string) context.Context {
	return withParent(ctx, "experiment_id:"+experimentID)
}

func withParent(ctx context.Context, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, parentKey, value)
}

// ParentFromContext extracts the bound parent value, if present.
func ParentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value := ctx.Value(parentKey); value != nil {
		if parent, ok := value.(string); ok {
			return strings.TrimSpace(parent)
		}
	}
	return ""
}
