package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/return-router/backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	objects map[string][]byte
	listErr error
}

func (m *memoryStorage) ListObjects(_ context.Context, prefix string) ([]ObjectInfo, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []ObjectInfo
	for key, data := range m.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (m *memoryStorage) DownloadObject(_ context.Context, key string, destPath string) error {
	data, ok := m.objects[key]
	if !ok {
		return errors.New("no such key")
	}
	return os.WriteFile(destPath, data, 0o644)
}

func (m *memoryStorage) UploadObject(_ context.Context, key string, data []byte) error {
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return nil
}

func TestDownloadTables(t *testing.T) {
	store := &memoryStorage{objects: map[string][]byte{
		"inputs/2024-06/returns.csv":          []byte("a"),
		"inputs/2024-06/store_inventory.xlsx": []byte("b"),
		"inputs/2024-06/readme.txt":           []byte("c"),
		"other/returns.csv":                   []byte("d"),
	}}
	dir := t.TempDir()

	paths, err := DownloadTables(context.Background(), store, "inputs/2024-06/", "", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "returns.csv"),
		filepath.Join(dir, "store_inventory.xlsx"),
	}, paths)

	data, err := os.ReadFile(filepath.Join(dir, "returns.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestDownloadTables_Override(t *testing.T) {
	store := &memoryStorage{objects: map[string][]byte{"inputs/returns.csv": []byte("a")}}
	dir := t.TempDir()

	paths, err := DownloadTables(context.Background(), store, "inputs", "returns.csv", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "returns.csv")}, paths)
}

func TestDownloadTables_Errors(t *testing.T) {
	_, err := DownloadTables(context.Background(), &memoryStorage{}, "empty/", "", t.TempDir())
	assert.Error(t, err)

	_, err = DownloadTables(context.Background(), &memoryStorage{listErr: errors.New("boom")}, "x", "", t.TempDir())
	assert.ErrorContains(t, err, "boom")
}

func TestDownloadTables_RejectsKeysOutsideDir(t *testing.T) {
	for _, key := range []string{"inputs/../evil.csv", "inputs/a/../../evil.csv"} {
		root := t.TempDir()
		dest := filepath.Join(root, "dest")
		store := &memoryStorage{objects: map[string][]byte{key: []byte("x")}}

		_, err := DownloadTables(context.Background(), store, "inputs/", "", dest)
		assert.ErrorContains(t, err, "outside", key)
		_, statErr := os.Stat(filepath.Join(root, "evil.csv"))
		assert.True(t, os.IsNotExist(statErr), key)
	}

	store := &memoryStorage{objects: map[string][]byte{"/etc/returns.csv": []byte("x")}}
	_, err := DownloadTables(context.Background(), store, "", "", t.TempDir())
	assert.ErrorContains(t, err, "outside")
}

func TestPublishFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recommendations.csv")
	require.NoError(t, os.WriteFile(path, []byte("return_id\n"), 0o644))

	store := &memoryStorage{}
	require.NoError(t, PublishFile(context.Background(), store, path, "/results/latest.csv"))
	require.NoError(t, PublishFile(context.Background(), store, path, ""))

	assert.Equal(t, []byte("return_id\n"), store.objects["results/latest.csv"])
	assert.Contains(t, store.objects, "recommendations.csv")
}

func TestResolveObjectKey(t *testing.T) {
	tests := []struct {
		prefix, override, want string
	}{
		{"inputs", "", "inputs"},
		{"", "/returns.csv", "returns.csv"},
		{"inputs/", "returns.csv", "inputs/returns.csv"},
		{"inputs", "inputs/returns.csv", "inputs/returns.csv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveObjectKey(tt.prefix, tt.override))
	}
}

func TestObjectRelativePath(t *testing.T) {
	assert.Equal(t, "a/b.csv", ObjectRelativePath("", "a/b.csv"))
	assert.Equal(t, "b.csv", ObjectRelativePath("a/", "a/b.csv"))
	assert.Equal(t, "nested/b.csv", ObjectRelativePath("a", "a/nested/b.csv"))
}

func TestSplitEndpoint(t *testing.T) {
	host, secure := splitEndpoint("https://s3.example.com/", false)
	assert.Equal(t, "s3.example.com", host)
	assert.True(t, secure)

	host, secure = splitEndpoint("http://localhost:9000", true)
	assert.Equal(t, "localhost:9000", host)
	assert.False(t, secure)

	host, secure = splitEndpoint("minio:9000", true)
	assert.Equal(t, "minio:9000", host)
	assert.True(t, secure)
}

func TestNewMinioClient_Validation(t *testing.T) {
	_, err := NewMinioClient(config.StorageConfig{})
	assert.Error(t, err)

	_, err = NewMinioClient(config.StorageConfig{Endpoint: "localhost:9000", Bucket: "b"})
	assert.ErrorContains(t, err, "credentials")

	c, err := NewMinioClient(config.StorageConfig{Endpoint: "http://localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", c.bucket)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", contentType("r.CSV"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", contentType("r.xlsx"))
	assert.Equal(t, "application/octet-stream", contentType("r.unknownext"))
}
