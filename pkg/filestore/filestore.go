// Package filestore publishes report artifacts to a local folder, an S3
// bucket or a Telegram chat.
package filestore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/igolaizola/llmtunes/pkg/filestore/local"
	"github.com/igolaizola/llmtunes/pkg/filestore/s3"
	"github.com/igolaizola/llmtunes/pkg/filestore/tgstore"
	"github.com/igolaizola/llmtunes/pkg/storage"
)

type fs interface {
	Upload(ctx context.Context, path, name string) error
}

type Store struct {
	typ string
	fs  fs
}

// Upload publishes the file at path under name.
func (s *Store) Upload(ctx context.Context, path, name string) error {
	return s.fs.Upload(ctx, path, name)
}

// Type returns the backend type.
func (s *Store) Type() string {
	return s.typ
}

// New returns a store for the backend type. Connection strings are a
// directory for local, key:secret@bucket.region for s3 and token@chat for
// telegram. The telegram backend keeps file references in the database.
func New(typ, conn, proxy string, debug bool, store *storage.Store) (*Store, error) {
	var fs fs
	switch typ {
	case "telegram":
		token, chatID, ok := strings.Cut(conn, "@")
		if !ok || token == "" {
			return nil, fmt.Errorf("filestore: invalid telegram connection string %q", conn)
		}
		chat, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("filestore: invalid telegram chat id %q: %w", chatID, err)
		}
		if store == nil {
			return nil, fmt.Errorf("filestore: telegram requires a database")
		}
		candidate, err := tgstore.New(token, chat, proxy, debug, store)
		if err != nil {
			return nil, fmt.Errorf("filestore: %w", err)
		}
		fs = candidate
	case "s3":
		key, secret, bucket, region, err := parseS3(conn)
		if err != nil {
			return nil, err
		}
		candidate, err := s3.New(key, secret, region, bucket, debug)
		if err != nil {
			return nil, fmt.Errorf("filestore: %w", err)
		}
		fs = candidate
	case "local":
		if conn == "" {
			return nil, fmt.Errorf("filestore: missing local directory")
		}
		fs = local.New(conn, debug)
	default:
		return nil, fmt.Errorf("filestore: unknown file storage type %q", typ)
	}
	return &Store{typ: typ, fs: fs}, nil
}

// parseS3 splits key:secret@bucket.region. Empty credentials fall back to
// the instance role.
func parseS3(conn string) (key, secret, bucket, region string, err error) {
	auth, loc, ok := strings.Cut(conn, "@")
	if !ok {
		return "", "", "", "", fmt.Errorf("filestore: invalid s3 connection string %q", conn)
	}
	key, secret, ok = strings.Cut(auth, ":")
	if !ok {
		return "", "", "", "", fmt.Errorf("filestore: invalid s3 auth string %q", conn)
	}
	bucket, region, ok = strings.Cut(loc, ".")
	if !ok || bucket == "" || region == "" || strings.Contains(region, ".") {
		return "", "", "", "", fmt.Errorf("filestore: invalid s3 location string %q", conn)
	}
	return key, secret, bucket, region, nil
}
