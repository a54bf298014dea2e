package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// MaxImageSize is the largest answer sheet photo accepted for upload
const MaxImageSize = 10 * 1024 * 1024

// ErrEmptyImage is returned when the source contains no bytes
var ErrEmptyImage = errors.New("image is empty")

// Image is an answer sheet photo ready to be uploaded
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// Loader reads answer sheet images from disk or over HTTP
type Loader struct {
	HTTPClient *http.Client
}

// NewLoader creates a new image loader
func NewLoader() *Loader {
	return &Loader{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads the image at source, which may be a local path or an http(s) URL
func (l *Loader) Load(ctx context.Context, source string) (*Image, error) {
	var (
		data     []byte
		filename string
		err      error
	)

	if isURL(source) {
		data, err = l.download(ctx, source)
		filename = filenameFromURL(source)
	} else {
		data, err = readFile(source)
		filename = filepath.Base(source)
	}
	if err != nil {
		return nil, err
	}

	return FromBytes(data, filename)
}

// FromBytes validates raw image data and fills in type and dimensions
func FromBytes(data []byte, filename string) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("image too large (max %s), size: %s", humanize.IBytes(MaxImageSize), humanize.IBytes(uint64(len(data))))
	}

	img := &Image{
		Filename:    filename,
		ContentType: ContentType(filename),
		Data:        data,
	}

	width, height, err := dimensions(data)
	if err != nil {
		slog.Warn("Failed to get image dimensions", "filename", filename, "error", err)
	} else {
		img.Width, img.Height = width, height
	}

	return img, nil
}

// ContentType derives a MIME type from the file extension, defaulting to image/jpeg
func ContentType(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "":
		return "image/jpeg"
	case "jpg":
		return "image/jpeg"
	default:
		return "image/" + ext
	}
}

func (l *Loader) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	// Read one byte past the limit so oversized images are detected
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return data, nil
}

func readFile(p string) ([]byte, error) {
	file, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

func dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func filenameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "photo.jpg"
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "photo.jpg"
	}
	return name
}
