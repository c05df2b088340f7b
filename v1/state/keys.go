package state

import "fmt"

// Well-known state keys shared by the pipeline components.
const (
	// KeyActiveRunID is the identifier of the run currently being
	// recorded, empty when idle.
	KeyActiveRunID = "active_run_id"

	// KeyLastRawTS is the timestamp (unix milliseconds, as a string) of
	// the most recently ingested raw message.
	KeyLastRawTS = "last_raw_ts"

	// KeyGatewayOnline marks a gateway as reachable. Used with a gateway
	// id suffix, for example "gateway_online:gw-07".
	KeyGatewayOnline = "gateway_online"

	// KeyIngestPaused pauses the ingestion handler when set to "1".
	KeyIngestPaused = "ingest_paused"

	// KeyMessageCount counts ingested messages since the last Clear.
	KeyMessageCount = "message_count"
)

// RunKey builds the state key for one recorded run.
func RunKey(runID int64) string {
	return fmt.Sprintf("run:%d", runID)
}

// StepKey builds the state key for one step within a run.
func StepKey(runID int64, step int) string {
	return fmt.Sprintf("step:%d:%d", runID, step)
}
