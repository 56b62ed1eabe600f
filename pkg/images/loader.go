// Package images decodes image resources. Decoders for GIF, JPEG, PNG,
// BMP and WebP are registered.
package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"vellum/pkg/resource"
)

// Cache caches decoded images and their dimensions by URL. It is safe for
// concurrent use.
type Cache struct {
	fetcher resource.Fetcher

	mu      sync.RWMutex
	images  map[string]image.Image
	configs map[string]image.Config
}

// NewCache returns a cache loading through f.
func NewCache(f resource.Fetcher) *Cache {
	return &Cache{
		fetcher: f,
		images:  make(map[string]image.Image),
		configs: make(map[string]image.Config),
	}
}

// Load fetches and decodes the image at uri.
func (c *Cache) Load(ctx context.Context, uri string) (image.Image, error) {
	c.mu.RLock()
	img, ok := c.images[uri]
	c.mu.RUnlock()
	if ok {
		return img, nil
	}

	res, err := c.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	img, _, err = image.Decode(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", uri, err)
	}

	c.mu.Lock()
	c.images[uri] = img
	b := img.Bounds()
	c.configs[uri] = image.Config{Width: b.Dx(), Height: b.Dy()}
	c.mu.Unlock()
	return img, nil
}

// Dimensions returns the natural size of the image at uri, decoding only
// its header.
func (c *Cache) Dimensions(ctx context.Context, uri string) (width, height int, err error) {
	c.mu.RLock()
	cfg, ok := c.configs[uri]
	c.mu.RUnlock()
	if ok {
		return cfg.Width, cfg.Height, nil
	}

	res, err := c.fetcher.Fetch(ctx, uri)
	if err != nil {
		return 0, 0, err
	}
	cfg, _, err = image.DecodeConfig(bytes.NewReader(res.Body))
	if err != nil {
		return 0, 0, fmt.Errorf("decoding %s: %w", uri, err)
	}

	c.mu.Lock()
	c.configs[uri] = cfg
	c.mu.Unlock()
	return cfg.Width, cfg.Height, nil
}
