package media

import (
	"context"
	"errors"
	"io"
)

// Folder names partition uploads inside the bucket by what they decorate.
const (
	FolderCommunityBanners = "community_banners"
	FolderCommunityLogos   = "community_logos"
	FolderPostMedia        = "post_media"
)

// Kind classifies an upload by its media type.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// ErrUnsupportedType rejects uploads whose content type the platform does not serve.
var ErrUnsupportedType = errors.New("media: unsupported content type")

// imageTypes and videoTypes are the only content types accepted for upload.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var videoTypes = map[string]string{
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
	"video/x-msvideo": ".avi",
}

// DetectKind classifies a content type, failing for anything outside the
// accepted image and video formats.
func DetectKind(contentType string) (Kind, error) {
	if _, ok := imageTypes[contentType]; ok {
		return KindImage, nil
	}
	if _, ok := videoTypes[contentType]; ok {
		return KindVideo, nil
	}
	return "", ErrUnsupportedType
}

// Extension returns the canonical file extension for an accepted content type.
func Extension(contentType string) (string, error) {
	if ext, ok := imageTypes[contentType]; ok {
		return ext, nil
	}
	if ext, ok := videoTypes[contentType]; ok {
		return ext, nil
	}
	return "", ErrUnsupportedType
}

// Store persists uploaded media and serves back a public URL for each object.
type Store interface {
	// Upload stores the object under the given folder and returns its URL.
	Upload(ctx context.Context, folder string, body io.Reader, size int64, contentType string) (string, error)
	// Remove deletes the object behind a previously returned URL. Unknown
	// URLs are not an error.
	Remove(ctx context.Context, objectURL string) error
}
