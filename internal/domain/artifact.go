package domain

import "time"

// Artifact identifies one persisted version of a model.
type Artifact struct {
	Kind      string    `json:"kind"`
	Version   string    `json:"version"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}
