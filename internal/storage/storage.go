package storage

import (
	"context"
	"io"
)

// SnapshotArchiver stores point-in-time JSON snapshots of a user's template
// set after a successful sync or adaptation. Archiving is best effort: a
// failed archive never fails the operation that produced the snapshot.
type SnapshotArchiver interface {
	// PutSnapshot stores body under objectKey with the given content type.
	PutSnapshot(ctx context.Context, objectKey string, contentType string, body io.Reader) error

	// DeleteSnapshot removes a previously stored snapshot.
	DeleteSnapshot(ctx context.Context, objectKey string) error
}
