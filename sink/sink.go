// Package sink persists canonical inventory records to S3, one object per
// resource, keyed so that a re-fetch of the same resource fully replaces
// the prior object.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/yairfalse/caravel/types"
)

// S3API is the slice of the S3 client the sink uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// WriteError is a failed inventory write. The unit processing loop reports
// it and continues with the next resource rather than aborting the unit.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write inventory object %s: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Sink writes inventory records under a common root prefix.
type Sink struct {
	client S3API
	bucket string
	root   string
}

// New creates a Sink rooted at prefix within bucket.
func New(client S3API, bucket, rootPrefix string) *Sink {
	return &Sink{client: client, bucket: bucket, root: strings.Trim(rootPrefix, "/")}
}

// ObjectKey derives the storage key for one resource: the kind's storage
// prefix plus the resource name, with an optional context segment for
// kinds whose resource name alone is ambiguous (sqldb nests under its
// parent server name). Path separators in the name are replaced.
func (s *Sink) ObjectKey(storagePrefix, contextName string, raw types.RawResource) string {
	name := sanitize(raw.Name())
	if contextName != "" {
		name = sanitize(contextName) + "_" + name
	}
	return fmt.Sprintf("%s/%s/%s.json", s.root, strings.Trim(storagePrefix, "/"), name)
}

// Put writes one record under key, replacing any prior object in full.
func (s *Sink) Put(ctx context.Context, key string, record types.InventoryRecord) error {
	body, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}

func sanitize(name string) string {
	return strings.ReplaceAll(name, "/", "-")
}
