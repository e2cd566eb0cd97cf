/*
Copyright 2025 SmartTech Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package files stores uploaded product media under the static directory.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/smarttech/storefront/model"
)

var (
	ErrUnsupportedKind = errors.New("file type must be 'images' or 'videos'")
	ErrNotFound        = errors.New("file not found")
	ErrInvalidName     = errors.New("invalid file name")
)

// Store keeps media files in <root>/images and <root>/videos and serves
// them under /<urlPrefix>/<kind>/<name>.
type Store struct {
	root      string
	urlPrefix string
}

// NewStore creates a store writing below root. Directories are created on
// the first upload.
func NewStore(root string) *Store {
	return &Store{root: root, urlPrefix: "/static"}
}

// Root is the directory served as static content.
func (s *Store) Root() string {
	return s.root
}

// ErrWrongContentType is returned when an upload does not match the kind.
type ErrWrongContentType struct {
	Kind model.MediaKind
}

func (e ErrWrongContentType) Error() string {
	if e.Kind == model.MediaVideos {
		return "File must be a video"
	}
	return "File must be an image"
}

// Save writes the upload under a fresh UUID name that keeps the original
// extension. contentType is the declared type of the part; when it is empty
// the type is detected from the first bytes.
func (s *Store) Save(ctx context.Context, kind model.MediaKind, originalName, contentType string, r io.Reader) (*model.MediaFile, error) {
	if !kind.Valid() {
		return nil, ErrUnsupportedKind
	}

	header := make([]byte, 512)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error reading upload header: %w", err)
	}
	header = header[:n]

	if contentType == "" {
		contentType = DetectFileType(header, originalName)
	}
	if !strings.HasPrefix(contentType, kindPrefix(kind)) {
		return nil, ErrWrongContentType{Kind: kind}
	}

	dir := filepath.Join(s.root, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating upload directory: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}

	size, err := io.Copy(f, io.MultiReader(strings.NewReader(string(header)), readerWithContext(ctx, r)))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			logrus.WithError(rmErr).WithField("path", path).Warn("failed to remove partial upload")
		}
		return nil, fmt.Errorf("error writing file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &model.MediaFile{
		Filename:         name,
		OriginalFilename: originalName,
		URL:              s.url(kind, name),
		Size:             size,
		Created:          info.ModTime(),
	}, nil
}

// List returns the files of one kind, newest first. A missing directory is
// an empty list.
func (s *Store) List(kind model.MediaKind) ([]model.MediaFile, error) {
	if !kind.Valid() {
		return nil, ErrUnsupportedKind
	}
	entries, err := os.ReadDir(filepath.Join(s.root, string(kind)))
	if errors.Is(err, os.ErrNotExist) {
		return []model.MediaFile{}, nil
	}
	if err != nil {
		return nil, err
	}

	files := make([]model.MediaFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, model.MediaFile{
			Filename: entry.Name(),
			URL:      s.url(kind, entry.Name()),
			Size:     info.Size(),
			Created:  info.ModTime(),
		})
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Created.After(files[j].Created)
	})
	return files, nil
}

// Delete removes one file. Names that would leave the kind directory are
// rejected.
func (s *Store) Delete(kind model.MediaKind, name string) error {
	if !kind.Valid() {
		return ErrUnsupportedKind
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}

	path := filepath.Join(s.root, string(kind), name)
	info, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return ErrNotFound
	}
	return os.Remove(path)
}

func (s *Store) url(kind model.MediaKind, name string) string {
	return fmt.Sprintf("%s/%s/%s", s.urlPrefix, kind, name)
}

func kindPrefix(kind model.MediaKind) string {
	if kind == model.MediaVideos {
		return "video/"
	}
	return "image/"
}

// DetectFileType returns the MIME type from the extension, falling back to
// content sniffing.
func DetectFileType(data []byte, filename string) string {
	if mimeType := DetectByExtension(filename); mimeType != "" {
		return mimeType
	}
	return http.DetectContentType(data)
}

// DetectByExtension detects the MIME type by the file extension.
func DetectByExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return mime.TypeByExtension(ext)
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
