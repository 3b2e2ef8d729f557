package upload

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"EduTalk/module/chat/model"
	"EduTalk/tools/errs"

	"github.com/google/uuid"
)

// Class is where an attachment lands: the message type it produces and
// the folder it is stored under.
type Class struct {
	MessageType string
	Folder      string
}

// Classify routes by MIME first, then by extension for documents.
// Anything unrecognized is a generic file.
func Classify(contentType, fileName string) Class {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return Class{MessageType: model.TypeImage, Folder: "images"}
	case strings.HasPrefix(contentType, "video/"):
		return Class{MessageType: model.TypeVideo, Folder: "videos"}
	case strings.HasPrefix(contentType, "audio/"):
		return Class{MessageType: model.TypeAudio, Folder: "audio"}
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return Class{MessageType: model.TypePDF, Folder: "files"}
	case ".doc", ".docx":
		return Class{MessageType: model.TypeDoc, Folder: "files"}
	case ".xls", ".xlsx":
		return Class{MessageType: model.TypeXls, Folder: "files"}
	case ".ppt", ".pptx":
		return Class{MessageType: model.TypePpt, Folder: "files"}
	case ".txt":
		return Class{MessageType: model.TypeTxt, Folder: "files"}
	}
	return Class{MessageType: model.TypeFile, Folder: "files"}
}

// Stored describes a persisted attachment.
type Stored struct {
	URL         string
	FileName    string
	FileSize    int64
	MessageType string
}

// Saver writes attachments under BaseDir/chat/<folder>/ with generated
// names. Ceilings are per category, in bytes; 0 means unlimited.
type Saver struct {
	BaseDir  string
	MaxImage int64
	MaxVideo int64
	MaxAudio int64
	MaxFile  int64
}

func (s *Saver) LimitFor(class Class) int64 {
	switch class.MessageType {
	case model.TypeImage:
		return s.MaxImage
	case model.TypeVideo:
		return s.MaxVideo
	case model.TypeAudio:
		return s.MaxAudio
	}
	return s.MaxFile
}

// Save validates the size ceiling before touching the disk, so an
// oversized upload leaves no partial file behind.
func (s *Saver) Save(fh *multipart.FileHeader) (*Stored, error) {
	class := Classify(fh.Header.Get("Content-Type"), fh.Filename)
	if limit := s.LimitFor(class); limit > 0 && fh.Size > limit {
		return nil, errs.ErrArgs.WrapMsg("attachment too large",
			"type", class.MessageType, "size", fh.Size, "limit", limit)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer src.Close()

	dir := filepath.Join(s.BaseDir, "chat", class.Folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(err)
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return nil, errs.Wrap(err)
	}

	return &Stored{
		URL:         "/uploads/chat/" + class.Folder + "/" + name,
		FileName:    fh.Filename,
		FileSize:    fh.Size,
		MessageType: class.MessageType,
	}, nil
}
