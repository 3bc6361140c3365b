package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"marketplace/internal/domain/media"
)

type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary configures the client from a cloudinary:// URL.
func NewCloudinary(url string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, folder, _ string, r io.Reader) (media.Image, error) {
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: folder})
	if err != nil {
		return media.Image{}, err
	}
	if res.Error.Message != "" {
		return media.Image{}, errors.New(res.Error.Message)
	}
	return media.Image{PublicID: res.PublicID, URL: res.SecureURL}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, publicID string) error {
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return errors.New(res.Error.Message)
	}
	return nil
}
