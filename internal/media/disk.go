package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"marketplace/internal/domain/media"
	"marketplace/internal/util"
)

// Disk keeps uploads under a directory that the API serves at /uploads.
type Disk struct {
	dir     string
	baseURL string
}

func NewDisk(dir, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (d *Disk) Upload(_ context.Context, folder, filename string, r io.Reader) (media.Image, error) {
	prefix, err := util.RandomToken(9)
	if err != nil {
		return media.Image{}, err
	}
	publicID := path.Join(util.Slugify(folder), prefix+"-"+util.SafeFilename(filename))

	full := filepath.Join(d.dir, filepath.FromSlash(publicID))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return media.Image{}, err
	}
	f, err := os.Create(full)
	if err != nil {
		return media.Image{}, err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return media.Image{}, err
	}
	if err := f.Close(); err != nil {
		return media.Image{}, err
	}
	return media.Image{PublicID: publicID, URL: d.baseURL + "/uploads/" + publicID}, nil
}

func (d *Disk) Delete(_ context.Context, publicID string) error {
	clean := path.Clean("/" + publicID)
	if clean == "/" {
		return errors.New("empty public id")
	}
	err := os.Remove(filepath.Join(d.dir, filepath.FromSlash(clean)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (d *Disk) Dir() string { return d.dir }
