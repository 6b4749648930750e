package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEventStatus(t *testing.T) {
	tests := []struct {
		status string
		reason string
		want   EventState
	}{
		{"pending", "", EventPending},
		{"success", "", EventSucceeded},
		{"error", "", EventFailed},
		{"warning", "", EventFailed},
		{"", "", EventFailed},
		{"SUCCESS", "", EventFailed},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got := ParseEventStatus(tt.status, tt.reason)
			assert.Equal(t, tt.want, got.State)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.want != EventPending, got.State.IsTerminal())
		})
	}
}

func TestParseEventStatus_Reason(t *testing.T) {
	assert.Equal(t, `unexpected status "error"`, ParseEventStatus("error", "").Reason)
	assert.Equal(t, "sync failed", ParseEventStatus("error", "sync failed").Reason)
	assert.Empty(t, ParseEventStatus("success", "ignored").Reason)
}

func TestParseTaskStatus(t *testing.T) {
	tests := []struct {
		state  string
		result string
		want   EventState
	}{
		{"planned", "pending", EventPending},
		{"running", "pending", EventPending},
		{"stopped", "success", EventSucceeded},
		{"stopped", "warning", EventFailed},
		{"stopped", "error", EventFailed},
		{"paused", "error", EventFailed},
		{"", "", EventFailed},
	}

	for _, tt := range tests {
		t.Run(tt.state+"/"+tt.result, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTaskStatus(tt.state, tt.result, "").State)
		})
	}

	assert.Equal(t, `unexpected task status "paused/error"`, ParseTaskStatus("paused", "error", "").Reason)
	assert.Equal(t, "boom", ParseTaskStatus("stopped", "error", "boom").Reason)
}

func TestEventState_String(t *testing.T) {
	assert.Equal(t, "PENDING", EventPending.String())
	assert.Equal(t, "SUCCEEDED", EventSucceeded.String())
	assert.Equal(t, "FAILED", EventFailed.String())
}

func TestEnvironment_IsLibrary(t *testing.T) {
	assert.True(t, Environment{Name: "Library"}.IsLibrary())
	assert.True(t, Environment{Name: "Base", Library: true}.IsLibrary())
	assert.False(t, Environment{Name: "library"}.IsLibrary())
	assert.False(t, Environment{Name: "dev"}.IsLibrary())
}
