package popstage

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// sniffLen is how many leading bytes are inspected when the extension does
// not identify a file's media type.
const sniffLen = 512

var digitKeys = [...]ebiten.Key{
	ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

var numpadKeys = [...]ebiten.Key{
	ebiten.KeyNumpad0, ebiten.KeyNumpad1, ebiten.KeyNumpad2, ebiten.KeyNumpad3, ebiten.KeyNumpad4,
	ebiten.KeyNumpad5, ebiten.KeyNumpad6, ebiten.KeyNumpad7, ebiten.KeyNumpad8, ebiten.KeyNumpad9,
}

var routeKeys = [...]ebiten.Key{ebiten.KeyF1, ebiten.KeyF2, ebiten.KeyF3, ebiten.KeyF4}

// audioTypes covers common audio extensions missing from the platform's
// mime tables.
var audioTypes = map[string]string{
	".aac":  "audio/aac",
	".aif":  "audio/aiff",
	".aiff": "audio/aiff",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".oga":  "audio/ogg",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wav":  "audio/wav",
	".weba": "audio/webm",
}

// pollInput reads this frame's input from ebiten and forwards it to the
// stage as events. Called once per Update.
func (v *Viewer) pollInput() {
	if dropped := ebiten.DroppedFiles(); dropped != nil {
		files, err := FilesFromFS(dropped)
		if err != nil {
			v.stage.log.printf("dropped files: %v", err)
		}
		v.stage.Drop(files)
	}

	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)
	v.stage.HoverUpload(v.UploadRegion.Contains(x, y))
	for id := range v.stage.Graph().Screens {
		r, ok := v.screenRects[id]
		v.stage.HoverScreen(id, ok && r.Contains(x, y))
	}

	for d := range digitKeys {
		if inpututil.IsKeyJustPressed(digitKeys[d]) || inpututil.IsKeyJustPressed(numpadKeys[d]) {
			v.stage.Key(d)
		}
	}
	for i, k := range routeKeys {
		if inpututil.IsKeyJustPressed(k) {
			v.stage.Navigate(Routes[i])
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		v.stage.ToggleTheme()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		v.stage.Analyze(v.ctx)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		v.stage.ResetUpload()
	}
}

// FilesFromFS lists every regular file in fsys in walk order. Audio payloads
// are read into memory immediately since a dropped-files FS is only
// guaranteed during the frame it was delivered. Entries that fail to read
// are skipped and reported in the returned error.
func FilesFromFS(fsys fs.FS) ([]File, error) {
	var files []File
	var errs []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err.Error())
			return nil
		}
		if d.IsDir() {
			return nil
		}
		f, err := fileFromFS(fsys, p)
		if err != nil {
			errs = append(errs, err.Error())
			return nil
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return files, err
	}
	if len(errs) > 0 {
		return files, fmt.Errorf("read files: %s", strings.Join(errs, "; "))
	}
	return files, nil
}

func fileFromFS(fsys fs.FS, p string) (File, error) {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return File{}, err
	}
	f := File{
		Name:      path.Base(p),
		MediaType: mediaType(p, data),
		Size:      int64(len(data)),
	}
	if f.IsAudio() {
		f.Open = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}
	return f, nil
}

// FilesFromPaths describes files on disk, as picked from a file chooser.
// Contents are opened lazily by File.Open.
func FilesFromPaths(paths []string) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("pick %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("pick %s: is a directory", p)
		}
		head, err := readHead(p)
		if err != nil {
			return nil, fmt.Errorf("pick %s: %w", p, err)
		}
		files = append(files, File{
			Name:      filepath.Base(p),
			MediaType: mediaType(p, head),
			Size:      info.Size(),
			Open:      func() (io.ReadCloser, error) { return os.Open(p) },
		})
	}
	return files, nil
}

func readHead(p string) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

// mediaType resolves a file's media type from its extension, falling back to
// content sniffing. Parameters such as charset are stripped.
func mediaType(name string, head []byte) string {
	ext := strings.ToLower(path.Ext(name))
	if t, ok := audioTypes[ext]; ok {
		return t
	}
	t := mime.TypeByExtension(ext)
	if t == "" {
		t = http.DetectContentType(head[:min(len(head), sniffLen)])
	}
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return t
}
