package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cipworks/common/v1/dbclient"
	"github.com/cipworks/common/v1/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB records every statement the handler executes.
type fakeDB struct {
	queries []string
	params  [][]dbclient.Param
	err     error
}

func (f *fakeDB) Connect(ctx context.Context) error { return nil }

func (f *fakeDB) ExecuteQuery(ctx context.Context, query string, params []dbclient.Param, opts ...dbclient.Option) (dbclient.Rows, error) {
	return nil, f.err
}

func (f *fakeDB) ExecuteNonQuery(ctx context.Context, query string, params []dbclient.Param, opts ...dbclient.Option) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.queries = append(f.queries, query)
	f.params = append(f.params, params)
	return 1, nil
}

func (f *fakeDB) ExecuteNonQueryReturning(ctx context.Context, query string, params []dbclient.Param, opts ...dbclient.Option) (interface{}, error) {
	return nil, f.err
}

func (f *fakeDB) Close() error { return nil }

type fakeRecorder struct {
	outcomes []string
}

func (f *fakeRecorder) IncrementIngestMessages(outcome string) {
	f.outcomes = append(f.outcomes, outcome)
}

func TestHandleRawMessage(t *testing.T) {
	db := &fakeDB{}
	rec := &fakeRecorder{}
	handler := NewHandler(db).WithRecorder(rec)

	body := []byte(`{"temp": 21.5, "ts": 1773480413000}`)
	err := handler.HandleMessage(context.Background(), "raw.gateway1", body)
	require.NoError(t, err)

	require.Len(t, db.queries, 1)
	assert.Equal(t, insertRawQuery, db.queries[0])

	params := db.params[0]
	require.Len(t, params, 3)
	assert.Equal(t, "raw.gateway1", params[0].Str)
	assert.Equal(t, string(body), params[1].Str)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC), params[2].Time)

	assert.Equal(t, []string{OutcomeStored}, rec.outcomes)
}

func TestHandleRawMessageWithoutTimestamp(t *testing.T) {
	db := &fakeDB{}
	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	handler := NewHandler(db)
	handler.now = func() time.Time { return fixed }

	err := handler.HandleMessage(context.Background(), "raw.gateway1", []byte(`{"temp": 19}`))
	require.NoError(t, err)

	require.Len(t, db.params, 1)
	assert.Equal(t, fixed, db.params[0][2].Time)
}

func TestHandleGatewayStatus(t *testing.T) {
	db := &fakeDB{}
	rec := &fakeRecorder{}
	handler := NewHandler(db).WithRecorder(rec)

	body := []byte(`{"gwid": "gw-7", "is_online": true, "ts": 1773480413}`)
	err := handler.HandleMessage(context.Background(), "gateway.status", body)
	require.NoError(t, err)

	require.Len(t, db.queries, 1)
	assert.Equal(t, insertGatewayStatusQuery, db.queries[0])

	params := db.params[0]
	require.Len(t, params, 3)
	assert.Equal(t, "gw-7", params[0].Str)
	assert.True(t, params[1].B)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC), params[2].Time)

	assert.Equal(t, []string{OutcomeStored}, rec.outcomes)
}

func TestHandleGatewayStatusDefaults(t *testing.T) {
	db := &fakeDB{}
	handler := NewHandler(db)

	err := handler.HandleMessage(context.Background(), "gateway.status", []byte(`{"ts": 1773480413}`))
	require.NoError(t, err)

	params := db.params[0]
	assert.Equal(t, "gateway1", params[0].Str)
	assert.False(t, params[1].B)
}

func TestHandleInvalidPayload(t *testing.T) {
	db := &fakeDB{}
	rec := &fakeRecorder{}
	handler := NewHandler(db).WithRecorder(rec)

	err := handler.HandleMessage(context.Background(), "raw.gateway1", []byte(`not json`))
	require.Error(t, err)
	assert.Empty(t, db.queries)
	assert.Equal(t, []string{OutcomeInvalid}, rec.outcomes)

	err = handler.HandleMessage(context.Background(), "gateway.status", []byte(`[1, 2]`))
	require.Error(t, err)
	assert.Empty(t, db.queries)
	assert.Equal(t, []string{OutcomeInvalid, OutcomeInvalid}, rec.outcomes)
}

func TestHandleStorageFailure(t *testing.T) {
	db := &fakeDB{err: errors.New("connection lost")}
	rec := &fakeRecorder{}
	handler := NewHandler(db).WithRecorder(rec)

	err := handler.HandleMessage(context.Background(), "raw.gateway1", []byte(`{"temp": 21}`))
	require.Error(t, err)
	assert.Equal(t, []string{OutcomeFailed}, rec.outcomes)
}

func TestHandlerUpdatesState(t *testing.T) {
	db := &fakeDB{}
	mem := state.NewMemoryManager()
	handler := NewHandler(db).WithState(mem)
	ctx := context.Background()

	err := handler.HandleMessage(ctx, "raw.gateway1", []byte(`{"temp": 21, "ts": 1773480413000}`))
	require.NoError(t, err)

	lastTS, err := mem.Get(ctx, state.KeyLastRawTS)
	require.NoError(t, err)
	assert.Equal(t, "1773480413000", lastTS)

	count, err := mem.Get(ctx, state.KeyMessageCount)
	require.NoError(t, err)
	assert.Equal(t, "1", count)

	err = handler.HandleMessage(ctx, "gateway.status", []byte(`{"is_online": true}`))
	require.NoError(t, err)

	online, err := mem.Get(ctx, state.KeyGatewayOnline)
	require.NoError(t, err)
	assert.Equal(t, "1", online)
}

// fakeMessage drives the pipeline without a broker.
type fakeMessage struct {
	routingKey string
	body       []byte
	acked      bool
	nacked     bool
}

func (m *fakeMessage) AckMsg() error {
	m.acked = true
	return nil
}

func (m *fakeMessage) NackMsg(requeue bool) error {
	m.nacked = true
	return nil
}

func (m *fakeMessage) Body() []byte                   { return m.body }
func (m *fakeMessage) RoutingKey() string             { return m.routingKey }
func (m *fakeMessage) Header() map[string]interface{} { return nil }

func TestPipelineWorkAcksAndRejects(t *testing.T) {
	db := &fakeDB{}
	handler := NewHandler(db)
	p := &Pipeline{handler: handler, workers: 1}

	good := &fakeMessage{routingKey: "raw.gateway1", body: []byte(`{"temp": 21}`)}
	bad := &fakeMessage{routingKey: "raw.gateway1", body: []byte(`garbage`)}

	msgs := make(chan Message, 2)
	msgs <- good
	msgs <- bad
	close(msgs)

	p.work(context.Background(), 0, msgs)

	assert.True(t, good.acked)
	assert.False(t, good.nacked)
	assert.True(t, bad.nacked)
	assert.False(t, bad.acked)
	require.Len(t, db.queries, 1)
}
