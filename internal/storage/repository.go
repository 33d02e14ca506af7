// ABOUTME: Repository interface for the patient document store.
// ABOUTME: Lets the HTTP layer and tests swap the file store for another implementation.
package storage

import (
	"context"

	"github.com/harperreed/medtrack/internal/models"
)

// Repository defines the storage interface for the patient document.
type Repository interface {
	// Read never fails; it reports which copy of the document it used.
	Read(ctx context.Context) (models.PatientState, Source)
	Write(ctx context.Context, doc models.PatientState) error
	Exists() bool
}
