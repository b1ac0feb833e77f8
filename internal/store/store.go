package store

import (
	"context"
	"fmt"
	"time"

	"github.com/znodanilo2017-byte/harvest-guard/internal/config"
)

// Namespace is the fixed key prefix partitioning the bucket keyspace by data
// lineage. Downstream consumers rely on it to tell field telemetry apart
// from simulated/polled data without a schema field.
type Namespace string

const (
	// NamespacePolled holds readings produced by the poll loop.
	NamespacePolled Namespace = "sensor_data_"

	// NamespaceRelayed holds readings relayed from physical field sensors.
	NamespaceRelayed Namespace = "sensor_real_"
)

// keyTimeLayout gives one-second key resolution. Two writes in the same
// namespace within the same second produce the same key and silently
// overwrite; accepted at the >=60s poll cadence.
const keyTimeLayout = "20060102_150405"

// KeyFor builds the object key for a reading ingested at t.
func KeyFor(ns Namespace, t time.Time) string {
	return fmt.Sprintf("%s%s.json", ns, t.Format(keyTimeLayout))
}

// ObjectInfo describes one stored object without its body.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// Store is a flat, append-only object store. Every Put is a blind
// overwrite-or-create; nothing is ever mutated or deleted by this system.
type Store interface {
	Put(ctx context.Context, key string, body []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Close() error
}

// Open selects the store backend from configuration: S3 by default, a local
// SQLite file when STORE_BACKEND=local.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case "local":
		return NewLocal(cfg.LocalDBPath)
	case "s3", "":
		return NewS3(ctx, cfg.Bucket, cfg.AWSRegion)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
