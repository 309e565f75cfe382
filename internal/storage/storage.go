package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
)

// RoutePrefix is the public path under which stored objects are referenced.
const RoutePrefix = "/uploads/"

var (
	// ErrObjectNotFound is returned when a reference resolves to nothing.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidReference is returned for references outside RoutePrefix.
	ErrInvalidReference = errors.New("invalid object reference")
)

// Object is an opened stored object.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// Service stores profile images and resolves the references it hands out.
type Service interface {
	Put(ctx context.Context, name string, body io.Reader, contentType string) (string, error)
	Open(ctx context.Context, ref string) (*Object, error)
	Delete(ctx context.Context, ref string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectName derives a collision-resistant object name from an uploaded file name.
func ObjectName(original string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(original, `\`, "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.TrimLeft(base, ".")
	if base == "" || base == "_" {
		base = "upload"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
}

// Reference returns the public reference of an object name.
func Reference(name string) string {
	return RoutePrefix + name
}

// NameFromReference extracts the object name from ref.
func NameFromReference(ref string) (string, error) {
	if !strings.HasPrefix(ref, RoutePrefix) {
		return "", ErrInvalidReference
	}
	name := strings.TrimPrefix(ref, RoutePrefix)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidReference
	}
	return name, nil
}
