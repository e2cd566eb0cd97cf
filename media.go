package storefront

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/smarttech/storefront/internal/apierror"
	"github.com/smarttech/storefront/internal/files"
	"github.com/smarttech/storefront/model"
)

// UploadMedia stores an uploaded image or video under a generated name.
//
// Parameters:
// - ctx context.Context: cancels a slow upload.
// - kind model.MediaKind: images or videos.
// - filename string: the client supplied name, kept only for its extension.
// - contentType string: must match kind.
// - r io.Reader: the file body.
//
// Returns:
// - *model.MediaFile: the stored file and its public url.
// - error: a BadRequest APIError for a wrong type, or a storage error.
func (s *Storefront) UploadMedia(ctx context.Context, kind model.MediaKind, filename, contentType string, r io.Reader) (*model.MediaFile, error) {
	f, err := s.media.Save(ctx, kind, filename, contentType, r)
	if err != nil {
		return nil, mediaError(err)
	}
	logrus.WithFields(logrus.Fields{"kind": kind, "file": f.Filename, "size": f.Size}).Info("media uploaded")
	return f, nil
}

// ListMedia returns the stored files of one kind, newest first.
func (s *Storefront) ListMedia(kind model.MediaKind) ([]model.MediaFile, error) {
	list, err := s.media.List(kind)
	if err != nil {
		return nil, mediaError(err)
	}
	return list, nil
}

// DeleteMedia removes a stored file. A missing file is a NotFound APIError.
func (s *Storefront) DeleteMedia(kind model.MediaKind, filename string) error {
	if err := s.media.Delete(kind, filename); err != nil {
		return mediaError(err)
	}
	return nil
}

func mediaError(err error) error {
	var wrongType files.ErrWrongContentType
	switch {
	case errors.As(err, &wrongType):
		return apierror.NewAPIError(apierror.ErrBadRequest, wrongType.Error(), err)
	case errors.Is(err, files.ErrUnsupportedKind):
		return apierror.NewAPIError(apierror.ErrBadRequest, "File type must be 'images' or 'videos'", err)
	case errors.Is(err, files.ErrNotFound):
		return apierror.NewAPIError(apierror.ErrNotFound, "File not found", err)
	case errors.Is(err, files.ErrInvalidName):
		return apierror.NewAPIError(apierror.ErrBadRequest, "Invalid file name", err)
	default:
		return apierror.NewAPIError(apierror.ErrInternalServer, "Error storing file", err)
	}
}
