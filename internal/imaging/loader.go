package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anthonynsimon/bild/imgio"
)

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// Still-image capture devices and the MCP tools both load through the cache,
// so replaying the same file as a frame sequence only decodes it once.
//
// Each entry remembers the file's size and modification time. A file that
// changed on disk since it was cached is evicted and decoded again.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cachedImage
}

type cachedImage struct {
	img     image.Image
	size    int64
	modTime time.Time
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cachedImage),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Decoding goes through bild's imgio, which supports PNG and JPEG. The cache
// key is the exact path string; relative and absolute spellings of the same
// file are cached separately.
func (c *ImageCache) Load(path string) (image.Image, error) {
	stat, err := os.Stat(path)
	if err != nil {
		c.Evict(path)
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	c.mu.RLock()
	entry, ok := c.images[path]
	c.mu.RUnlock()
	if ok {
		if entry.size == stat.Size() && entry.modTime.Equal(stat.ModTime()) {
			return entry.img, nil
		}
		c.Evict(path)
	}

	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = cachedImage{img: img, size: stat.Size(), modTime: stat.ModTime()}
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// LoadFrame loads an image through the cache and prepares it as an HSV frame.
func (c *ImageCache) LoadFrame(path string, opts PrepareOptions) (*Frame, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	frame, err := Prepare(img, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s: %w", filepath.Base(path), err)
	}
	return frame, nil
}

// FrameInfo describes a source image and the working frame derived from it.
type FrameInfo struct {
	// SourceWidth and SourceHeight are the decoded image dimensions.
	SourceWidth  int `json:"source_width"`
	SourceHeight int `json:"source_height"`

	// Width and Height are the dimensions after Prepare.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is derived from the file extension: "png", "jpeg" or "unknown".
	Format string `json:"format"`

	// FileSizeBytes is the size of the image file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadFrameInfo loads path and reports its source and working dimensions.
func LoadFrameInfo(cache *ImageCache, path string, opts PrepareOptions) (*FrameInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	}

	bounds := img.Bounds()
	width, height := opts.Width, opts.Height
	if width == 0 {
		width = bounds.Dx()
	}
	if height == 0 {
		height = bounds.Dy()
	}

	return &FrameInfo{
		SourceWidth:   bounds.Dx(),
		SourceHeight:  bounds.Dy(),
		Width:         width,
		Height:        height,
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}
