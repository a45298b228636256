package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTel implements Emitter by recording every event as an immediately-ended
// OpenTelemetry span, one span per emitted event. Adapted from the teacher's
// OTelEmitter (graph/emit/otel.go), renaming RunID/NodeID to this domain's
// InstantiationID/ProcessID.
type OTel struct {
	tracer trace.Tracer
}

// NewOTel returns an OTel emitter using tracer, typically obtained via
// otel.Tracer("racegraph").
func NewOTel(tracer trace.Tracer) *OTel {
	return &OTel{tracer: tracer}
}

func (o *OTel) Emit(event Event) {
	_, span := o.tracer.Start(context.Background(), string(event.Kind))
	defer span.End()
	o.annotate(span, event)
}

func (o *OTel) EmitBatch(ctx context.Context, events []Event) error {
	for _, event := range events {
		_, span := o.tracer.Start(ctx, string(event.Kind))
		o.annotate(span, event)
		span.End()
	}
	return nil
}

func (o *OTel) Flush(context.Context) error { return nil }

func (o *OTel) annotate(span trace.Span, event Event) {
	span.SetAttributes(
		attribute.Int("instantiation_id", event.InstantiationID),
		attribute.Int("step", event.Step),
		attribute.Int("process_id", event.ProcessID),
		attribute.String("msg", event.Msg),
	)
	for k, v := range event.Meta {
		span.SetAttributes(attribute.String("meta."+k, fmt.Sprintf("%v", v)))
	}
	if err, ok := event.Meta["error"].(string); ok {
		span.SetStatus(codes.Error, err)
		span.RecordError(fmt.Errorf("%s", err))
	}
}
