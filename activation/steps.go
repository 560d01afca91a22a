package activation

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	stepNormalize       = "normalize"
	stepValidatePairing = "validate_pairing"
	stepGuard           = "guard"
	stepCheckNotActive  = "check_not_active"
	stepCheckNotPending = "check_not_pending"
	stepDispatch        = "dispatch"
)

// step runs fn inside a span named activation.<name> and logs its outcome
// along with fields. Values added to out by fn are logged on completion.
func (a *Activator) step(ctx context.Context, log *logrus.Entry, name string, fields logrus.Fields, fn func(ctx context.Context, out logrus.Fields) error) error {
	ctx, span := a.tracer.Start(ctx, "activation."+name, trace.WithAttributes(attributes(fields)...))
	defer span.End()

	out := logrus.Fields{}
	start := time.Now()
	err := fn(ctx, out)

	entry := log.WithField("step", name).WithFields(fields).WithFields(out).WithField("elapsed", time.Since(start))
	span.SetAttributes(attributes(out)...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		entry.WithError(err).Debug("step failed")
		return err
	}

	span.SetStatus(codes.Ok, "")
	entry.Debug("step completed")
	return nil
}

func attributes(fields logrus.Fields) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case uint64:
			attrs = append(attrs, attribute.String(k, strconv.FormatUint(val, 10)))
		case interface{ String() string }:
			attrs = append(attrs, attribute.String(k, val.String()))
		}
	}
	return attrs
}
