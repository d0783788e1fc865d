package deck

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var imageFormats = map[string]struct{ ext, contentType string }{
	"png":  {"png", "image/png"},
	"jpeg": {"jpeg", "image/jpeg"},
	"gif":  {"gif", "image/gif"},
	"bmp":  {"bmp", "image/bmp"},
	"tiff": {"tiff", "image/tiff"},
	"webp": {"webp", "image/webp"},
}

// ImageSize returns the native size of an encoded image at 72 DPI.
func ImageSize(data []byte) (Size, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Size{}, "", fmt.Errorf("unsupported image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return Size{}, "", fmt.Errorf("unsupported image: empty %s", format)
	}
	return Size{int64(cfg.Width) * EMUPerImagePixel, int64(cfg.Height) * EMUPerImagePixel}, format, nil
}

// FitSize resolves requested dimensions against native: both given are used
// as is, one given keeps the aspect ratio, none uses native.
func FitSize(native Size, width, height *int64) Size {
	switch {
	case width != nil && height != nil:
		return Size{*width, *height}
	case width != nil:
		return Size{*width, native.Height * *width / native.Width}
	case height != nil:
		return Size{native.Width * *height / native.Height, *height}
	}
	return native
}

// AddPicture stores the image as a media part and appends a picture shape.
func (s *Slide) AddPicture(data []byte, descr string, off Point, width, height *int64) (*Shape, error) {
	if s.pres == nil {
		return nil, ErrDetached
	}
	native, format, err := ImageSize(data)
	if err != nil {
		return nil, err
	}
	f, ok := imageFormats[format]
	if !ok {
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	pkg := s.pres.pkg
	media := pkg.NextName("ppt/media/image%d." + f.ext)
	pkg.PutRaw(media, data)
	ct, err := pkg.ContentTypes()
	if err != nil {
		return nil, err
	}
	ct.Default(f.ext, f.contentType)
	rid := s.rels.Add(RelImage, media)

	id := s.NextShapeID()
	sh := newPicture(id, "Picture "+strconv.Itoa(id-1), descr, rid, off, FitSize(native, width, height))
	s.Append(sh)
	return sh, nil
}
