package facet

import (
	"context"

	"github.com/matst80/tyre-finder/pkg/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	name   = "tyre-finder-facets"
	tracer = otel.Tracer(name)
)

func SpannedFetcher(fn func() *types.ItemList, name string, attrs ...attribute.KeyValue) func(ctx context.Context) *types.ItemList {
	return func(ctx context.Context) *types.ItemList {
		_, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
		defer span.End()
		return fn()
	}
}

// Match adds one fetcher per constrained dimension to qm. Dimensions in the
// selection that the engine does not know are ignored.
func (e *Engine) Match(selection types.Selection, qm *types.QueryMerger) {
	for _, field := range e.fields {
		value := selection.Get(field.Id)
		if value == "" && !field.Required {
			continue
		}
		qm.Add(SpannedFetcher(func() *types.ItemList {
			return field.MatchValue(value)
		}, "match", attribute.String("dimension", field.Id), attribute.String("value", value)))
	}
}
