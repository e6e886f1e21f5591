package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"communityhub/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// fileHeaders 构造一个 multipart 表单并解析出文件头
func fileHeaders(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := w.CreateFormFile("images[]", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["images[]"]
}

func TestStoreUploadsLocal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalMediaStore(dir, "/uploads/")
	require.NoError(t, err)

	urls, err := StoreUploads(context.Background(), store, fileHeaders(t, map[string][]byte{
		"pothole.png": pngHeader,
	}), 1<<20)
	require.NoError(t, err)
	require.Len(t, urls, 1)
	assert.True(t, strings.HasPrefix(urls[0], "/uploads/"))
	assert.True(t, strings.HasSuffix(urls[0], ".png"))

	_, err = os.Stat(filepath.Join(dir, strings.TrimPrefix(urls[0], "/uploads/")))
	assert.NoError(t, err)
}

func TestStoreUploadsRejects(t *testing.T) {
	store, err := NewLocalMediaStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = StoreUploads(context.Background(), store, fileHeaders(t, map[string][]byte{
		"notes.txt": []byte("just some text"),
	}), 1<<20)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = StoreUploads(context.Background(), store, fileHeaders(t, map[string][]byte{
		"big.png": append(pngHeader, make([]byte, 64)...),
	}), 16)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	// 空文件直接跳过
	urls, err := StoreUploads(context.Background(), store, fileHeaders(t, map[string][]byte{
		"empty.png": {},
	}), 1<<20)
	require.NoError(t, err)
	assert.Empty(t, urls)
}
