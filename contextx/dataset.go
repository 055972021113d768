package contextx

import "context"

// WithDataset returns a derived context that carries the name of the
// dataset the request operates on. The Datasets service sets it before
// invoking the store so downstream tracing and auth hooks can see which
// dataset a request touched.
func WithDataset(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, datasetKey, name)
}

// DatasetFromContext extracts the dataset name stored in ctx.
// It returns an empty string when none is present.
func DatasetFromContext(ctx context.Context) string {
	name, _ := ctx.Value(datasetKey).(string)
	return name
}
