package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/metinatakli/cinema-booking/internal/domain"
	"golang.org/x/text/unicode/norm"
)

const movieImageDir = "uploads/movies"

// DefaultMaxImagePixels bounds the decoded size of an upload.
const DefaultMaxImagePixels = 40_000_000

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// FileImageStore keeps uploaded images below Root and serves them from BaseURL.
// Images whose header declares more than MaxPixels pixels are rejected before
// their pixel data is decoded.
type FileImageStore struct {
	Root      string
	BaseURL   string
	MaxPixels int
}

func NewFileImageStore(root, baseURL string) *FileImageStore {
	return &FileImageStore{
		Root:      root,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		MaxPixels: DefaultMaxImagePixels,
	}
}

// Save stores data as a new movie image named after name and returns its
// path relative to Root. Nothing is written unless data decodes as an image.
func (s *FileImageStore) Save(name string, data io.Reader) (string, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}

	ext, ok := allowedImageTypes[mimetype.Detect(content).String()]
	if !ok {
		return "", domain.ErrInvalidImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return "", domain.ErrInvalidImage
	}

	if s.MaxPixels > 0 && cfg.Width > s.MaxPixels/cfg.Height {
		return "", domain.ErrInvalidImage
	}

	if _, _, err := image.Decode(bytes.NewReader(content)); err != nil {
		return "", domain.ErrInvalidImage
	}

	rel := path.Join(movieImageDir, fmt.Sprintf("%s-%s%s", Slugify(name), uuid.New(), ext))

	full := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}

	if err := os.WriteFile(full, content, 0o644); err != nil {
		return "", err
	}

	return rel, nil
}

// Delete removes a previously saved image. Missing files are not an error.
func (s *FileImageStore) Delete(rel string) error {
	if rel == "" {
		return nil
	}

	full, err := s.resolve(rel)
	if err != nil {
		return err
	}

	err = os.Remove(full)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

func (s *FileImageStore) URL(rel string) string {
	if rel == "" {
		return ""
	}

	return s.BaseURL + "/" + rel
}

func (s *FileImageStore) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)[1:]
	if clean == "" || clean != rel {
		return "", fmt.Errorf("invalid image path %q", rel)
	}

	return filepath.Join(s.Root, filepath.FromSlash(clean)), nil
}

// Slugify lowercases s, strips accents and joins the remaining letters and
// digits with single hyphens.
func Slugify(s string) string {
	var b strings.Builder

	hyphen := false
	for _, r := range norm.NFKD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(unicode.ToLower(r))
		default:
			hyphen = true
		}
	}

	if b.Len() == 0 {
		return "image"
	}

	return b.String()
}
