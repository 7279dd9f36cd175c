package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracerDisabledIsNoop(t *testing.T) {
	tr, closer, err := InitTracer(Config{Enabled: false})
	require.NoError(t, err)
	defer closer()
	_, ok := tr.(opentracing.NoopTracer)
	assert.True(t, ok)
}

func TestStartSpanNestsAndFails(t *testing.T) {
	mt := mocktracer.New()
	prev := opentracing.GlobalTracer()
	opentracing.SetGlobalTracer(mt)
	defer opentracing.SetGlobalTracer(prev)

	parent, ctx := StartSpan(context.Background(), "cycle", opentracing.Tags{"symbol": "BTCUSDT"})
	child, _ := StartSpan(ctx, "fetch", nil)
	Fail(child, errors.New("timeout"))
	child.Finish()
	parent.Finish()

	spans := mt.FinishedSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "fetch", spans[0].OperationName)
	assert.Equal(t, true, spans[0].Tag("error"))
	assert.Equal(t, "timeout", spans[0].Tag("error.message"))
	assert.Equal(t, spans[1].SpanContext.SpanID, spans[0].ParentID)
	assert.Equal(t, "BTCUSDT", spans[1].Tag("symbol"))
}
