// Package storage provides file storage for uploaded avatar images.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// extPattern matches a plain lowercased file extension. Anything else
// falls back to .jpg when naming the stored file.
var extPattern = regexp.MustCompile(`^\.[a-z0-9]+$`)

// LocalAvatarStore writes avatar images under <root>/avatars and returns
// reference paths of the form /uploads/avatars/<file> for persisting on the
// user profile. The files themselves are served statically by the router.
type LocalAvatarStore struct {
	root string
}

// NewLocalAvatarStore creates the avatars directory under root if needed.
func NewLocalAvatarStore(root string) (*LocalAvatarStore, error) {
	dir := filepath.Join(root, "avatars")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar directory: %w", err)
	}
	return &LocalAvatarStore{root: root}, nil
}

// Save stores the avatar bytes and returns the reference path to persist.
// The stored name embeds the owner's ID and a timestamp so successive
// uploads never collide. The image mime check happens at the HTTP layer;
// the original filename is only consulted for the extension.
func (s *LocalAvatarStore) Save(_ context.Context, userID uint, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !extPattern.MatchString(ext) {
		ext = ".jpg"
	}

	name := fmt.Sprintf("avatar-%d-%d%s", userID, time.Now().UnixNano(), ext)
	path := filepath.Join(s.root, "avatars", name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write avatar file: %w", err)
	}

	return "/uploads/avatars/" + name, nil
}
