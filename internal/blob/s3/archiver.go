package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kitebird-capital/terminal/internal/domain"
)

// Archiver uploads every published snapshot as a JSON object keyed by
// capture date and cycle ID, giving a durable record beyond the Postgres
// retention window. It implements the refresh.SnapshotSink interface.
type Archiver struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewArchiver creates an Archiver writing under the given key prefix
// (for example "snapshots").
func NewArchiver(c *Client, prefix string) *Archiver {
	if prefix == "" {
		prefix = "snapshots"
	}
	return &Archiver{
		uploader: manager.NewUploader(c.S3()),
		bucket:   c.Bucket(),
		prefix:   prefix,
	}
}

// Name identifies the archiver as a snapshot sink.
func (a *Archiver) Name() string { return "s3-archiver" }

// Publish uploads the snapshot to <prefix>/YYYY/MM/DD/<cycle_id>.json.
func (a *Archiver) Publish(ctx context.Context, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("s3blob: marshal snapshot: %w", err)
	}

	key := a.objectKey(snap)
	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3blob: upload %s: %w", key, err)
	}
	return nil
}

// objectKey partitions snapshots by capture date so daily listings stay
// cheap.
func (a *Archiver) objectKey(snap *domain.Snapshot) string {
	return fmt.Sprintf("%s/%s/%s.json",
		a.prefix, snap.UpdatedAt.Format("2006/01/02"), snap.CycleID)
}
