package bamboo

import "encoding/json"

// Employee is a single employee record. The set of keys depends on the
// fields requested, so it is kept as a generic object.
type Employee map[string]any

// Event types returned by /time_off/whos_out.
const (
	EventTypeTimeOff = "timeOff"
	EventTypeHoliday = "holiday"
)

// EventType returns the "type" of a who's out event, or "" when the event
// is not an object or its type is not a string. The rest of the event is
// left untouched so callers can pass it through as received.
func EventType(event json.RawMessage) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(event, &fields); err != nil {
		return ""
	}
	var eventType string
	if err := json.Unmarshal(fields["type"], &eventType); err != nil {
		return ""
	}
	return eventType
}
