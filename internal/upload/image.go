package upload

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"path"
	"strings"

	"github.com/nfnt/resize"

	"proptech/portal/internal/models"
)

// Downscale shrinks img so neither side exceeds maxDim, re-encoding it as
// JPEG. Images already within bounds are returned untouched. Data that does
// not decode as an image is rejected.
func Downscale(img models.ImageUpload, maxDim uint) (models.ImageUpload, error) {
	decoded, format, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return img, fmt.Errorf("unsupported image format or corrupt image %s: %w", img.Filename, err)
	}
	b := decoded.Bounds()
	if maxDim == 0 || (uint(b.Dx()) <= maxDim && uint(b.Dy()) <= maxDim) {
		return img, nil
	}

	resized := resize.Thumbnail(maxDim, maxDim, decoded, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return img, fmt.Errorf("failed to re-encode resized image %s: %w", img.Filename, err)
	}

	name := img.Filename
	if format != "jpeg" {
		name = strings.TrimSuffix(name, path.Ext(name)) + ".jpg"
	}
	return models.ImageUpload{Filename: name, Data: buf.Bytes()}, nil
}

// DownscaleAll applies Downscale to every image of a listing request.
func DownscaleAll(req *models.AddListingRequest, maxDim uint) error {
	for i := range req.Images {
		out, err := Downscale(req.Images[i], maxDim)
		if err != nil {
			return err
		}
		req.Images[i] = out
	}
	if req.FeaturedImage != nil {
		out, err := Downscale(*req.FeaturedImage, maxDim)
		if err != nil {
			return err
		}
		req.FeaturedImage = &out
	}
	return nil
}
