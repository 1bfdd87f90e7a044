package popstage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestMediaType(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want string
	}{
		{"song.mp3", nil, "audio/mpeg"},
		{"SONG.WAV", nil, "audio/wav"},
		{"take.flac", nil, "audio/flac"},
		{"notes.txt", []byte("hello"), "text/plain"},
		{"page.html", nil, "text/html"},
		{"noext", []byte("ID3\x03\x00\x00\x00"), "audio/mpeg"},
		{"blob", []byte{0x00, 0x01, 0x02}, "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := mediaType(tt.name, tt.head); got != tt.want {
			t.Errorf("mediaType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFilesFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"a.txt":         {Data: []byte("text")},
		"b.mp3":         {Data: []byte("ID3 payload")},
		"dir/c.ogg":     {Data: []byte("OggS")},
		"dir/sub/d.png": {Data: []byte("\x89PNG\r\n\x1a\n")},
	}
	files, err := FilesFromFS(fsys)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 4 {
		t.Fatalf("files = %d, want 4", len(files))
	}
	byName := map[string]File{}
	for _, f := range files {
		byName[f.Name] = f
	}
	mp3 := byName["b.mp3"]
	if mp3.MediaType != "audio/mpeg" || mp3.Size != 11 || mp3.Open == nil {
		t.Fatalf("b.mp3 = %+v", mp3)
	}
	rc, err := mp3.Open()
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "ID3 payload" {
		t.Errorf("payload = %q", data)
	}
	if byName["c.ogg"].MediaType != "audio/ogg" {
		t.Errorf("nested file = %+v", byName["c.ogg"])
	}
	if byName["a.txt"].Open != nil {
		t.Error("non-audio entries carry no payload")
	}

	got, ok := Classify(files)
	if !ok || !got.IsAudio() {
		t.Error("dropped set should contain audio")
	}
}

func TestFilesFromPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mix.mp3")
	if err := os.WriteFile(path, []byte("ID3 data"), 0o644); err != nil {
		t.Fatal(err)
	}
	files, err := FilesFromPaths([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	f := files[0]
	if f.Name != "mix.mp3" || f.MediaType != "audio/mpeg" || f.Size != 8 {
		t.Errorf("file = %+v", f)
	}
	rc, err := f.Open()
	if err != nil {
		t.Fatal(err)
	}
	rc.Close()

	if _, err := FilesFromPaths([]string{dir}); err == nil {
		t.Error("directories should be rejected")
	}
	if _, err := FilesFromPaths([]string{filepath.Join(dir, "missing.mp3")}); err == nil {
		t.Error("missing files should be rejected")
	}
}
