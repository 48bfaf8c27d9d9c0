package validation

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/username/tradefolio/backend/src/logger"
)

// AllowedUploadExtensions is a map for quick lookup of accepted spreadsheet
// extensions.
var AllowedUploadExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
}

// Magic byte signatures for the accepted spreadsheet containers.
var (
	zipSignature = []byte{0x50, 0x4B, 0x03, 0x04}                         // .xlsx (OOXML zip)
	cfbSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1} // .xls (CFB)
)

// ValidateUploadFilename checks the file extension against the accepted set.
func ValidateUploadFilename(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedUploadExtensions[ext] {
		logger.L.Warn("Disallowed upload extension", "filename", filename, "ext", ext)
		return fmt.Errorf("file type %q is not supported, expected .xlsx or .xls", ext)
	}
	return nil
}

// ValidateFileContentByMagicBytes checks that the actual file content carries
// a spreadsheet container signature, regardless of what the client declared.
func ValidateFileContentByMagicBytes(data []byte) error {
	if bytes.HasPrefix(data, zipSignature) || bytes.HasPrefix(data, cfbSignature) {
		return nil
	}
	logger.L.Warn("Upload content failed magic byte check", "size", len(data))
	return fmt.Errorf("file content is not a recognized spreadsheet format")
}
