package amqp

import (
	"testing"
	"time"
)

func TestNewArchiveMessage(t *testing.T) {
	msg := NewArchiveMessage(42, "pdf")

	if msg.ConfigID != 42 {
		t.Errorf("ConfigID = %v, want 42", msg.ConfigID)
	}
	if msg.Format != "pdf" {
		t.Errorf("Format = %q, want pdf", msg.Format)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestArchiveMessage_JSON(t *testing.T) {
	timestamp := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &ArchiveMessage{
		ConfigID:  7,
		Format:    "pdf",
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ArchiveMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ArchiveMessageFromJSON() error = %v", err)
	}

	if parsed.ConfigID != msg.ConfigID {
		t.Errorf("Parsed ConfigID = %v, want %v", parsed.ConfigID, msg.ConfigID)
	}
	if parsed.Format != msg.Format {
		t.Errorf("Parsed Format = %q, want %q", parsed.Format, msg.Format)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestArchiveMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"config_id": "not_a_number"}`)

	if _, err := ArchiveMessageFromJSON(invalidJSON); err == nil {
		t.Error("ArchiveMessageFromJSON() should fail with invalid JSON")
	}
}
