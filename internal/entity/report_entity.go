package entity

import (
	"time"

	"github.com/google/uuid"
)

// Report is the fully merged blueprint document produced by one completed
// generation run. The id is the generation request id, so a persisted
// report can always be found from the identifier the client already holds.
type Report struct {
	Id        uuid.UUID
	FullName  string
	Document  map[string]interface{}
	CreatedAt time.Time
}
