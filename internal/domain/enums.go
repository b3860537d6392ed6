package domain

import (
	"path/filepath"
	"strings"
)

// DocumentType represents the file formats accepted for OCR processing.
type DocumentType string

const (
	DocTypePDF  DocumentType = "pdf"
	DocTypePNG  DocumentType = "png"
	DocTypeJPG  DocumentType = "jpg"
	DocTypeJPEG DocumentType = "jpeg"
	DocTypeTIFF DocumentType = "tiff"
	DocTypeDOCX DocumentType = "docx"
)

// AllowedExtensions maps file extensions (without dot) to DocumentType.
var AllowedExtensions = map[string]DocumentType{
	"pdf":  DocTypePDF,
	"png":  DocTypePNG,
	"jpg":  DocTypeJPG,
	"jpeg": DocTypeJPEG,
	"tiff": DocTypeTIFF,
	"docx": DocTypeDOCX,
}

// ContentTypes maps DocumentType to its MIME content type.
var ContentTypes = map[DocumentType]string{
	DocTypePDF:  "application/pdf",
	DocTypePNG:  "image/png",
	DocTypeJPG:  "image/jpeg",
	DocTypeJPEG: "image/jpeg",
	DocTypeTIFF: "image/tiff",
	DocTypeDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// DocumentTypeForPath maps a file path's extension to a DocumentType.
func DocumentTypeForPath(path string) (DocumentType, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	t, ok := AllowedExtensions[ext]
	return t, ok
}

// FileStage is the per-file pipeline state. Written and Failed are terminal.
type FileStage string

const (
	StagePending        FileStage = "pending"
	StageUploading      FileStage = "uploading"
	StageAwaitingResult FileStage = "awaiting_result"
	StageAssembling     FileStage = "assembling"
	StageRendering      FileStage = "rendering"
	StageWriting        FileStage = "writing"
	StageWritten        FileStage = "written"
	StageFailed         FileStage = "failed"
)
