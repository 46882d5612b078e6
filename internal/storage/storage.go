package storage

import (
	"context"
	"path"
	"strings"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Archive keeps documents that were removed from the primary database.
type Archive interface {
	PutDocument(ctx context.Context, key string, body []byte, contentType string) (string, error)
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// ResolutionKey returns the archive key of a resolution document.
func ResolutionKey(patientID, resolutionID string) string {
	return path.Join("resolutions", patientID, resolutionID+".json")
}

func joinKey(prefix, key string) string {
	prefix = strings.Trim(prefix, "/")
	key = strings.TrimLeft(key, "/")
	if prefix == "" {
		return key
	}
	if key == "" {
		return prefix
	}
	return prefix + "/" + key
}
