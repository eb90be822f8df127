package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// ExtractAmount runs light preprocessing + Tesseract OCR over a receipt image
// and returns the best amount candidate in whole rupiah. A clean image with no
// recognizable amount returns (0, "", nil).
func ExtractAmount(path string) (int64, string, error) {
	pre, cleanup, err := preprocess(path)
	if err != nil {
		return 0, "", fmt.Errorf("preprocess: %w", err)
	}
	defer cleanup()

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetImage(pre); err != nil {
		return 0, "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return 0, "", fmt.Errorf("ocr: %w", err)
	}
	amt, raw, ok := BestAmount(text)
	if !ok {
		return 0, "", nil
	}
	return amt, raw, nil
}

// preprocess writes a grayscale, contrast-boosted (and upscaled if small) copy
// to a temp file for Tesseract. The caller removes it via the cleanup func.
func preprocess(path string) (string, func(), error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", nil, err
	}
	img = imaging.Grayscale(img)
	img = imaging.AdjustContrast(img, 20)
	if img.Bounds().Dx() < 1000 {
		img = imaging.Resize(img, img.Bounds().Dx()*2, 0, imaging.Lanczos)
	}
	tmp, err := os.CreateTemp("", "receipt-*.ocr.png")
	if err != nil {
		return "", nil, err
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	if err := imaging.Save(img, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", nil, err
	}
	cleanup := func() { _ = os.Remove(tmpPath) }
	return tmpPath, cleanup, nil
}

// IsSupportedImage reports whether a file name looks like a receipt image we
// can decode. OCR temp files are excluded to avoid recursive processing.
func IsSupportedImage(name string) bool {
	if strings.Contains(name, ".ocr.") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}
