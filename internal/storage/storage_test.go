package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	cases := map[string]string{
		"avatar.png":         "1700000000123-avatar.png",
		"../../etc/passwd":   "1700000000123-passwd",
		`C:\photos\me 1.jpg`: "1700000000123-me_1.jpg",
		".hidden":            "1700000000123-hidden",
		"":                   "1700000000123-upload",
	}
	for in, want := range cases {
		assert.Equal(t, want, ObjectName(in, now), in)
	}
}

func TestNameFromReference(t *testing.T) {
	name, err := NameFromReference("/uploads/1-a.png")
	require.NoError(t, err)
	assert.Equal(t, "1-a.png", name)

	for _, ref := range []string{"", "1-a.png", "/uploads/", "/uploads/../x", "/uploads/a/b", "/other/a.png"} {
		_, err := NameFromReference(ref)
		assert.ErrorIs(t, err, ErrInvalidReference, ref)
	}
}

func TestLocalServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, err := NewLocalService(t.TempDir())
	require.NoError(t, err)

	ref, err := svc.Put(ctx, "1-avatar.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1-avatar.png", ref)

	obj, err := svc.Open(ctx, ref)
	require.NoError(t, err)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.NoError(t, obj.Body.Close())
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, int64(9), obj.Size)
	assert.Equal(t, "image/png", obj.ContentType)

	_, err = svc.Put(ctx, "1-avatar.png", strings.NewReader("again"), "image/png")
	assert.Error(t, err)

	require.NoError(t, svc.Delete(ctx, ref))
	_, err = svc.Open(ctx, ref)
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.NoError(t, svc.Delete(ctx, ref))
}
