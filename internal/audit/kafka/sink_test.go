package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"termcolor/internal/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		f.records = append(f.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func (f *fakeProducer) Close() { f.closed = true }

func TestSink_Append(t *testing.T) {
	p := &fakeProducer{}
	sink := NewWithProducer(p, "termcolor.audit")

	ts := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	err := sink.Append(context.Background(), audit.Event{
		Action:    audit.ActionColorUpdated,
		TermID:    42,
		OldColor:  "fff",
		NewColor:  "000",
		Timestamp: ts,
	})
	require.NoError(t, err)
	require.Len(t, p.records, 1)

	rec := p.records[0]
	assert.Equal(t, "termcolor.audit", rec.Topic)
	assert.Equal(t, "42", string(rec.Key))
	require.Len(t, rec.Headers, 1)
	assert.Equal(t, "term_color_updated", string(rec.Headers[0].Value))

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, "000", decoded.NewColor)
	assert.True(t, ts.Equal(decoded.Timestamp))
}

func TestSink_AppendPropagatesBrokerError(t *testing.T) {
	boom := errors.New("not leader")
	sink := NewWithProducer(&fakeProducer{err: boom}, "t")

	err := sink.Append(context.Background(), audit.Event{Action: audit.ActionColorDeleted, TermID: 1})
	require.ErrorIs(t, err, boom)
}

func TestSink_Close(t *testing.T) {
	p := &fakeProducer{}
	NewWithProducer(p, "t").Close()
	assert.True(t, p.closed)
}
