package upload

import (
	"errors"
	"testing"

	"EduTalk/module/chat/model"
	"EduTalk/tools/errs"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		contentType string
		fileName    string
		wantType    string
		wantFolder  string
	}{
		{"image/png", "photo.png", model.TypeImage, "images"},
		{"image/jpeg", "photo.jpg", model.TypeImage, "images"},
		{"video/mp4", "clip.mp4", model.TypeVideo, "videos"},
		{"audio/mpeg", "voice.mp3", model.TypeAudio, "audio"},
		{"application/pdf", "notes.pdf", model.TypePDF, "files"},
		{"application/msword", "essay.doc", model.TypeDoc, "files"},
		{"application/vnd.ms-excel", "grades.XLSX", model.TypeXls, "files"},
		{"application/vnd.ms-powerpoint", "slides.pptx", model.TypePpt, "files"},
		{"text/plain", "readme.txt", model.TypeTxt, "files"},
		{"application/octet-stream", "data.bin", model.TypeFile, "files"},
		{"", "mystery", model.TypeFile, "files"},
	}
	for _, tc := range cases {
		got := Classify(tc.contentType, tc.fileName)
		if got.MessageType != tc.wantType || got.Folder != tc.wantFolder {
			t.Errorf("Classify(%q, %q) = %+v, want %s/%s",
				tc.contentType, tc.fileName, got, tc.wantType, tc.wantFolder)
		}
	}
}

func TestLimitFor(t *testing.T) {
	s := &Saver{MaxImage: 50, MaxVideo: 200, MaxAudio: 0, MaxFile: 100}

	if s.LimitFor(Class{MessageType: model.TypeImage}) != 50 {
		t.Fatal("image ceiling")
	}
	if s.LimitFor(Class{MessageType: model.TypeVideo}) != 200 {
		t.Fatal("video ceiling")
	}
	if s.LimitFor(Class{MessageType: model.TypeAudio}) != 0 {
		t.Fatal("audio must be unlimited")
	}
	for _, typ := range []string{model.TypePDF, model.TypeDoc, model.TypeTxt, model.TypeFile} {
		if s.LimitFor(Class{MessageType: typ}) != 100 {
			t.Fatalf("%s must use the generic file ceiling", typ)
		}
	}
}

func TestSaveRejectsOversizedBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	s := &Saver{BaseDir: dir, MaxImage: 10}

	fh := fileHeader(t, "big.png", "image/png", make([]byte, 64))
	_, err := s.Save(fh)
	if !errors.Is(err, errs.ErrArgs) {
		t.Fatalf("want args error, got %v", err)
	}
	assertEmptyDir(t, dir)
}

func TestSaveWritesAndBuildsURL(t *testing.T) {
	dir := t.TempDir()
	s := &Saver{BaseDir: dir, MaxImage: 1 << 20}

	content := []byte("png-bytes")
	fh := fileHeader(t, "photo.png", "image/png", content)
	stored, err := s.Save(fh)
	if err != nil {
		t.Fatal(err)
	}
	if stored.MessageType != model.TypeImage {
		t.Fatalf("type = %s", stored.MessageType)
	}
	if stored.FileName != "photo.png" {
		t.Fatalf("file name = %s", stored.FileName)
	}
	if stored.FileSize != int64(len(content)) {
		t.Fatalf("size = %d", stored.FileSize)
	}
	const prefix = "/uploads/chat/images/"
	if len(stored.URL) <= len(prefix) || stored.URL[:len(prefix)] != prefix {
		t.Fatalf("url = %s", stored.URL)
	}
	name := stored.URL[len(prefix):]
	assertFileContent(t, dir+"/chat/images/"+name, content)
}
