package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metinatakli/cinema-booking/api"
	"github.com/metinatakli/cinema-booking/internal/domain"
	"github.com/metinatakli/cinema-booking/internal/mocks"
	"github.com/metinatakli/cinema-booking/internal/storage"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}

	return buf.Bytes()
}

func uploadRequest(t *testing.T, url, field string, content []byte, asFile bool) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if asFile {
		part, err := mw.CreateFormFile(field, "poster.png")
		if err != nil {
			t.Fatal(err)
		}
		part.Write(content)
	} else {
		mw.WriteField(field, string(content))
	}
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, url, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	return r
}

func TestUploadMovieImage(t *testing.T) {
	tests := []struct {
		name           string
		movieID        int
		field          string
		content        func(t *testing.T) []byte
		asFile         bool
		previousImage  string
		wantStatus     int
		wantErrMessage string
		wantStored     bool
	}{
		{
			name:       "stores a valid image",
			movieID:    1,
			field:      "image",
			content:    pngBytes,
			asFile:     true,
			wantStatus: http.StatusOK,
			wantStored: true,
		},
		{
			name:          "replaces the previous image",
			movieID:       1,
			field:         "image",
			content:       pngBytes,
			asFile:        true,
			previousImage: "uploads/movies/old.png",
			wantStatus:    http.StatusOK,
			wantStored:    true,
		},
		{
			name:           "rejects a file that is not an image",
			movieID:        1,
			field:          "image",
			content:        func(t *testing.T) []byte { return []byte("plain text") },
			asFile:         true,
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: domain.ErrInvalidImage.Error(),
		},
		{
			name:           "rejects a text value instead of a file",
			movieID:        1,
			field:          "image",
			content:        func(t *testing.T) []byte { return []byte("not image") },
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "no file was submitted",
		},
		{
			name:       "unknown movie",
			movieID:    404,
			field:      "image",
			content:    pngBytes,
			asFile:     true,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()

			if tt.previousImage != "" {
				old := filepath.Join(root, filepath.FromSlash(tt.previousImage))
				os.MkdirAll(filepath.Dir(old), 0o755)
				os.WriteFile(old, pngBytes(t), 0o644)
			}

			var storedPath string

			app := newTestApplication(func(a *Application) {
				a.images = storage.NewFileImageStore(root, "/media")
				a.movieRepo = &mocks.MockMovieRepo{
					GetByIdFunc: func(ctx context.Context, id int) (*domain.Movie, error) {
						if id != 1 {
							return nil, domain.ErrRecordNotFound
						}
						return &domain.Movie{ID: 1, Title: "Blade Runner", Image: tt.previousImage}, nil
					},
					UpdateImageFunc: func(ctx context.Context, id int, image string) error {
						storedPath = image
						return nil
					},
				}
			})

			r := uploadRequest(t, fmt.Sprintf("/movies/%d/upload-image", tt.movieID), tt.field, tt.content(t), tt.asFile)
			w := httptest.NewRecorder()
			serve(t, app, w, r, testAdmin)

			if got := w.Code; got != tt.wantStatus {
				t.Fatalf("UploadMovieImage() status = %v, want %v", got, tt.wantStatus)
			}

			if tt.wantStored {
				var response api.MovieImageResponse
				if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}

				if response.Image != "/media/"+storedPath {
					t.Errorf("UploadMovieImage() image = %q, want %q", response.Image, "/media/"+storedPath)
				}

				if !strings.HasPrefix(storedPath, "uploads/movies/blade-runner-") {
					t.Errorf("UploadMovieImage() stored path = %q", storedPath)
				}

				if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(storedPath))); err != nil {
					t.Errorf("UploadMovieImage() stored file missing: %v", err)
				}

				if tt.previousImage != "" {
					if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(tt.previousImage))); !os.IsNotExist(err) {
						t.Errorf("UploadMovieImage() previous image still present")
					}
				}
			} else if storedPath != "" {
				t.Errorf("UploadMovieImage() updated image to %q on failure", storedPath)
			}

			checkErrorResponse(t, w, struct {
				wantStatus     int
				wantErrMessage string
			}{tt.wantStatus, tt.wantErrMessage})
		})
	}
}
