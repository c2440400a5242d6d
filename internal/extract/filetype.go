package extract

import (
	"path/filepath"
	"strings"

	"github.com/docuvault/docuvault/internal/models"
)

// DetectFileType maps a filename extension to the recorded file type tag.
// Anything unrecognized is "other" and skips processing entirely.
func DetectFileType(filename string) models.FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return models.FileTypePDF
	case ".docx":
		return models.FileTypeDocx
	case ".doc":
		return models.FileTypeDoc
	case ".txt":
		return models.FileTypeTxt
	case ".csv":
		return models.FileTypeCSV
	default:
		return models.FileTypeOther
	}
}
