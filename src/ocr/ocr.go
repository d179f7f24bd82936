package ocr

import (
	"fmt"
	"log"
	"os"
	"strings"

	"screen-capture-llm/src/llm"
)

// ExtractText runs OCR on an image file via the vision model and writes
// the extracted text next to it as <image>.txt, returning the text path.
func ExtractText(imagePath string) (string, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}

	text, err := llm.QueryVision(imageData)
	if err != nil {
		return "", err
	}

	textPath := replaceExt(imagePath, ".txt")
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write OCR text to %s: %w", textPath, err)
	}

	log.Printf("OCR extracted %d chars to %s", len(text), textPath)
	return textPath, nil
}

func replaceExt(path, ext string) string {
	if i := strings.LastIndex(path, "."); i > strings.LastIndexAny(path, `/\`) {
		return path[:i] + ext
	}
	return path + ext
}
