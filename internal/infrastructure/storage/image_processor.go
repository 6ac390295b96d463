package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

var ErrInvalidImage = errors.New("invalid image")

// Variant is one resized rendition, fitted inside Size x Size.
type Variant struct {
	Name string
	Size int
}

// Variants are generated largest first.
var Variants = []Variant{
	{Name: "large", Size: 1200},
	{Name: "medium", Size: 600},
	{Name: "thumbnail", Size: 300},
}

// ImageInfo describes a validated upload.
type ImageInfo struct {
	Format      string
	ContentType string
	Ext         string
	Width       int
	Height      int
}

type ImageProcessor struct {
	MaxSize int64
	Quality int
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{MaxSize: 10 * 1024 * 1024, Quality: 90}
}

// Validate accepts JPEG and PNG up to MaxSize.
func (p *ImageProcessor) Validate(data []byte) (ImageInfo, error) {
	if len(data) == 0 {
		return ImageInfo{}, fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	if int64(len(data)) > p.MaxSize {
		return ImageInfo{}, fmt.Errorf("%w: exceeds %dMB", ErrInvalidImage, p.MaxSize/(1024*1024))
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	info := ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}
	switch format {
	case "jpeg":
		info.ContentType, info.Ext = "image/jpeg", "jpg"
	case "png":
		info.ContentType, info.Ext = "image/png", "png"
	default:
		return ImageInfo{}, fmt.Errorf("%w: format %s not allowed (only jpeg/png)", ErrInvalidImage, format)
	}
	return info, nil
}

// Process renders every variant as JPEG, keyed by variant name.
func (p *ImageProcessor) Process(data []byte) (map[string][]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode: %v", ErrInvalidImage, err)
	}
	out := make(map[string][]byte, len(Variants))
	for _, v := range Variants {
		resized := imaging.Fit(img, v.Size, v.Size, imaging.Lanczos)
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: p.Quality}); err != nil {
			return nil, fmt.Errorf("cannot encode %s: %w", v.Name, err)
		}
		out[v.Name] = buf.Bytes()
	}
	return out, nil
}
