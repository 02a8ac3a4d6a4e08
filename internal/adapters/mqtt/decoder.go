package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marpol/driftwatch/internal/domain/model"
)

// topicVesselSegment is the topic segment carrying the MMSI:
// vessels-v2/<mmsi>/location.
const topicVesselSegment = 1

// minTopicSegments is the shortest addressing that still yields a vessel id.
const minTopicSegments = 3

// VesselID extracts the MMSI from a location topic. Messages whose
// addressing cannot yield an id are dropped before reaching the engine.
func VesselID(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < minTopicSegments || parts[topicVesselSegment] == "" {
		return "", false
	}
	return parts[topicVesselSegment], true
}

// DecodeReport parses a location payload. Missing fields default to zero;
// a missing or zero timestamp falls back to receipt time from now.
func DecodeReport(payload []byte, now func() int64) (model.PositionReport, error) {
	var r model.PositionReport
	if err := json.Unmarshal(payload, &r); err != nil {
		return model.PositionReport{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if r.Time == 0 {
		r.Time = now()
	}
	return r, nil
}
