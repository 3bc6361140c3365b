package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/apperr"
	"marketplace/internal/breaker"
	"marketplace/internal/domain/media"
)

func TestDisk_UploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir, "http://localhost:8000/")
	require.NoError(t, err)
	ctx := context.Background()

	img, err := d.Upload(ctx, FolderProducts, "Red Shoe.JPG", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.PublicID, "product-images/"))
	assert.True(t, strings.HasSuffix(img.PublicID, "-red-shoe.jpg"))
	assert.Equal(t, "http://localhost:8000/uploads/"+img.PublicID, img.URL)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(img.PublicID)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, d.Delete(ctx, img.PublicID))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(img.PublicID)))
	assert.True(t, os.IsNotExist(err))

	// already gone is not an error
	assert.NoError(t, d.Delete(ctx, img.PublicID))
}

func TestDisk_DeleteStaysInsideDir(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(root, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))

	d, err := NewDisk(filepath.Join(root, "uploads"), "")
	require.NoError(t, err)
	require.NoError(t, d.Delete(context.Background(), "../secret.txt"))

	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

type brokenHost struct{}

func (brokenHost) Upload(context.Context, string, string, io.Reader) (media.Image, error) {
	return media.Image{}, errors.New("503 from host")
}
func (brokenHost) Delete(context.Context, string) error { return errors.New("503 from host") }

func TestWithBreaker_ReportsUpstream(t *testing.T) {
	u := WithBreaker(brokenHost{}, breaker.Settings{Failures: 1, Cooldown: time.Minute})

	_, err := u.Upload(context.Background(), FolderAvatars, "a.png", strings.NewReader(""))
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))

	// open breaker still maps to upstream
	err = u.Delete(context.Background(), "avatars/a")
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}
