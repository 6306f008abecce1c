package bamboo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventType(t *testing.T) {
	tests := []struct {
		event    string
		expected string
	}{
		{`{"id":1,"type":"timeOff","employeeId":123}`, EventTypeTimeOff},
		{`{"id":"h-2","type":"holiday","observed":true}`, EventTypeHoliday},
		{`{"id":3,"type":7}`, ""},
		{`{"id":4}`, ""},
		{`"holiday"`, ""},
		{`null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			assert.Equal(t, tt.expected, EventType(json.RawMessage(tt.event)))
		})
	}
}
