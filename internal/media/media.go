// Package media stores uploaded images with an external image host or on
// local disk.
package media

import (
	"context"
	"io"

	"github.com/sony/gobreaker/v2"

	"marketplace/internal/apperr"
	"marketplace/internal/breaker"
	"marketplace/internal/domain/media"
)

const (
	FolderAvatars  = "avatars"
	FolderProducts = "product-images"
)

type Uploader interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader) (media.Image, error)
	Delete(ctx context.Context, publicID string) error
}

type breakerUploader struct {
	next Uploader
	cb   *gobreaker.CircuitBreaker[media.Image]
}

// WithBreaker reports every image host failure as an upstream error and
// short-circuits while the host keeps failing.
func WithBreaker(next Uploader, s breaker.Settings) Uploader {
	return &breakerUploader{next: next, cb: breaker.New[media.Image]("media", s)}
}

func (u *breakerUploader) Upload(ctx context.Context, folder, filename string, r io.Reader) (media.Image, error) {
	img, err := u.cb.Execute(func() (media.Image, error) {
		return u.next.Upload(ctx, folder, filename, r)
	})
	if err != nil {
		return media.Image{}, apperr.Upstream("image upload failed", err)
	}
	return img, nil
}

func (u *breakerUploader) Delete(ctx context.Context, publicID string) error {
	_, err := u.cb.Execute(func() (media.Image, error) {
		return media.Image{}, u.next.Delete(ctx, publicID)
	})
	if err != nil {
		return apperr.Upstream("image delete failed", err)
	}
	return nil
}
