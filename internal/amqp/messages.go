package amqp

import (
	"encoding/json"
	"time"
)

// ArchiveMessage asks the worker to archive a stored lease configuration.
// It carries only the row ID; the worker loads the configuration from the
// database so that a re-saved configuration is archived in its latest form.
type ArchiveMessage struct {
	ConfigID  int64     `json:"config_id"`
	Format    string    `json:"format"`
	Timestamp time.Time `json:"timestamp"`
}

func NewArchiveMessage(configID int64, format string) *ArchiveMessage {
	return &ArchiveMessage{
		ConfigID:  configID,
		Format:    format,
		Timestamp: time.Now(),
	}
}

func (m *ArchiveMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ArchiveMessageFromJSON(data []byte) (*ArchiveMessage, error) {
	var msg ArchiveMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
