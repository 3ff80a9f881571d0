package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// tableExtensions are the object suffixes treated as input tables.
var tableExtensions = []string{".csv", ".xlsx"}

// DownloadTables downloads every CSV/XLSX object under prefix into destDir,
// keeping paths relative to the prefix. When override is set only that key
// is fetched.
func DownloadTables(ctx context.Context, client ObjectStorage, prefix, override, destDir string) ([]string, error) {
	var keys []string

	if override != "" {
		keys = []string{ResolveObjectKey(prefix, override)}
	} else {
		listPrefix := strings.TrimSpace(prefix)
		objects, err := client.ListObjects(ctx, listPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects for prefix %s: %w", listPrefix, err)
		}
		for _, obj := range objects {
			if isTableKey(obj.Key) {
				keys = append(keys, obj.Key)
			}
		}
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("no table files found for prefix %s", prefix)
	}

	localPaths := make([]string, 0, len(keys))
	for _, key := range keys {
		rel := filepath.FromSlash(ObjectRelativePath(prefix, key))
		if !filepath.IsLocal(rel) {
			return nil, fmt.Errorf("object key %s resolves outside %s", key, destDir)
		}
		localPath := filepath.Join(destDir, rel)
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to prepare directory for %s: %w", localPath, err)
		}
		if err := client.DownloadObject(ctx, key, localPath); err != nil {
			return nil, err
		}
		log.Debug().Str("key", key).Str("path", localPath).Msg("downloaded object")
		localPaths = append(localPaths, localPath)
	}

	sort.Strings(localPaths)
	return localPaths, nil
}

// PublishFile uploads a local file under key.
func PublishFile(ctx context.Context, client ObjectStorage, localPath, key string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", localPath, err)
	}
	if key == "" {
		key = filepath.Base(localPath)
	}
	return client.UploadObject(ctx, strings.TrimPrefix(key, "/"), data)
}

func isTableKey(key string) bool {
	lower := strings.ToLower(key)
	for _, ext := range tableExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ResolveObjectKey joins an override key onto prefix unless it already
// carries it.
func ResolveObjectKey(prefix, override string) string {
	if override == "" {
		return strings.TrimSpace(prefix)
	}
	if prefix == "" {
		return strings.TrimPrefix(override, "/")
	}

	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	overrideTrimmed := strings.TrimPrefix(strings.TrimSpace(override), "/")

	if strings.HasPrefix(overrideTrimmed, prefixTrimmed) {
		return overrideTrimmed
	}
	return fmt.Sprintf("%s/%s", prefixTrimmed, overrideTrimmed)
}

// ObjectRelativePath strips prefix from key for local placement.
func ObjectRelativePath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	rel := strings.TrimPrefix(key, prefixTrimmed+"/")
	if rel == "" {
		return filepath.Base(key)
	}
	return rel
}
