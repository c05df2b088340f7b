package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cipworks/common/v1/dbclient"
	"github.com/cipworks/common/v1/state"
	"github.com/cipworks/common/v1/timeutil"
)

// Statements the handler runs against the database client. Queries are
// written in the shared PostgreSQL dialect with %s parameter markers, so
// they run unchanged on both backends.
const (
	insertRawQuery           = "INSERT INTO raw_log (topic, data, ts) VALUES (%s, %s, %s)"
	insertGatewayStatusQuery = "INSERT INTO gateway_status (gwid, is_online, ts) VALUES (%s, %s, %s)"
)

// gatewayStatusTopic is the routing key carrying gateway liveness
// updates. Every other topic is treated as raw gateway data.
const gatewayStatusTopic = "gateway.status"

// defaultGatewayID is used when a status payload does not name its gateway.
const defaultGatewayID = "gateway1"

// Message processing outcomes reported to the Recorder.
const (
	OutcomeStored  = "stored"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// Recorder counts processed messages by outcome.
// *metrics.Metrics satisfies this interface.
type Recorder interface {
	IncrementIngestMessages(outcome string)
}

// Handler turns consumed broker messages into database rows. Raw data
// messages land in raw_log, gateway status messages land in
// gateway_status and update the shared state keys.
type Handler struct {
	db       dbclient.Client
	state    state.Manager
	logger   Logger
	recorder Recorder

	// now supplies the fallback timestamp for payloads without one
	now func() time.Time
}

// NewHandler creates a handler storing messages through the given
// database client.
func NewHandler(db dbclient.Client) *Handler {
	return &Handler{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithState attaches a state manager. When set, raw messages update the
// last-seen timestamp and message counter, and gateway status messages
// update the online flag.
func (h *Handler) WithState(m state.Manager) *Handler {
	h.state = m
	return h
}

// WithLogger attaches a structured logger and returns the handler for
// chaining.
func (h *Handler) WithLogger(l Logger) *Handler {
	h.logger = l
	return h
}

// WithRecorder attaches an outcome counter and returns the handler for
// chaining.
func (h *Handler) WithRecorder(r Recorder) *Handler {
	h.recorder = r
	return h
}

// HandleMessage processes one consumed message. The topic decides the
// route: "gateway.status" payloads go to the gateway_status table,
// everything else goes to raw_log. A non-nil error means the message
// should be rejected without requeueing.
func (h *Handler) HandleMessage(ctx context.Context, topic string, body []byte) error {
	var err error
	if topic == gatewayStatusTopic {
		err = h.handleGatewayStatus(ctx, body)
	} else {
		err = h.handleRaw(ctx, topic, body)
	}
	return err
}

// parsePayload decodes a JSON object payload and extracts its timestamp.
// Payloads without a usable "ts" field get the current time.
func (h *Handler) parsePayload(body []byte) (map[string]interface{}, time.Time, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, time.Time{}, fmt.Errorf("ingest: invalid JSON payload: %w", err)
	}

	ts, ok := timeutil.ToTimestamp(payload["ts"])
	if !ok {
		ts = h.now()
	}
	return payload, ts, nil
}

func (h *Handler) handleRaw(ctx context.Context, topic string, body []byte) error {
	_, ts, err := h.parsePayload(body)
	if err != nil {
		h.record(OutcomeInvalid)
		h.logWarn("Dropping unparseable raw message", map[string]interface{}{
			"topic": topic,
		})
		return err
	}

	_, err = h.db.ExecuteNonQuery(ctx, insertRawQuery, []dbclient.Param{
		dbclient.Text(topic),
		dbclient.Text(string(body)),
		dbclient.Timestamp(ts),
	})
	if err != nil {
		h.record(OutcomeFailed)
		h.logError("Failed to store raw message", err, map[string]interface{}{
			"topic": topic,
		})
		return err
	}

	h.record(OutcomeStored)
	h.touchRawState(ctx, ts)
	return nil
}

func (h *Handler) handleGatewayStatus(ctx context.Context, body []byte) error {
	payload, ts, err := h.parsePayload(body)
	if err != nil {
		h.record(OutcomeInvalid)
		h.logWarn("Dropping unparseable gateway status", nil)
		return err
	}

	gwid := defaultGatewayID
	if v, ok := payload["gwid"].(string); ok && v != "" {
		gwid = v
	}
	isOnline := false
	if v, ok := payload["is_online"].(bool); ok {
		isOnline = v
	}

	_, err = h.db.ExecuteNonQuery(ctx, insertGatewayStatusQuery, []dbclient.Param{
		dbclient.Text(gwid),
		dbclient.Bool(isOnline),
		dbclient.Timestamp(ts),
	})
	if err != nil {
		h.record(OutcomeFailed)
		h.logError("Failed to store gateway status", err, map[string]interface{}{
			"gwid": gwid,
		})
		return err
	}

	h.record(OutcomeStored)
	h.touchGatewayState(ctx, gwid, isOnline)
	return nil
}

// touchRawState updates the shared state after a stored raw message.
// State failures are logged, not propagated: the row is already stored.
func (h *Handler) touchRawState(ctx context.Context, ts time.Time) {
	if h.state == nil {
		return
	}
	if err := h.state.Set(ctx, state.KeyLastRawTS, strconv.FormatInt(ts.UnixMilli(), 10), 0); err != nil {
		h.logWarn("Failed to update last raw timestamp", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if _, err := h.state.Increment(ctx, state.KeyMessageCount, 1); err != nil {
		h.logWarn("Failed to increment message counter", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// touchGatewayState updates the online flag and logs transitions.
func (h *Handler) touchGatewayState(ctx context.Context, gwid string, isOnline bool) {
	if h.state == nil {
		return
	}
	value := "0"
	if isOnline {
		value = "1"
	}
	changed, err := h.state.UpdateChanges(ctx, state.KeyGatewayOnline, value)
	if err != nil {
		h.logWarn("Failed to update gateway online flag", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if changed {
		h.logInfo("Gateway status changed", map[string]interface{}{
			"gwid":      gwid,
			"is_online": isOnline,
		})
	}
}

func (h *Handler) record(outcome string) {
	if h.recorder != nil {
		h.recorder.IncrementIngestMessages(outcome)
	}
}

func (h *Handler) logInfo(msg string, fields map[string]interface{}) {
	if h.logger != nil {
		h.logger.Info(msg, nil, fields)
	}
}

func (h *Handler) logWarn(msg string, fields map[string]interface{}) {
	if h.logger != nil {
		h.logger.Warn(msg, nil, fields)
	}
}

func (h *Handler) logError(msg string, err error, fields map[string]interface{}) {
	if h.logger != nil {
		h.logger.Error(msg, err, fields)
	}
}
