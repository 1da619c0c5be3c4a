package frame

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"github.com/vova616/screenshot"

	"github.com/drakos74/free-learn/internal/model"
)

// Static cycles through a fixed set of frames.
type Static struct {
	mutex  *sync.Mutex
	images []image.Image
	index  int
}

// NewStatic creates a source out of the given frames.
func NewStatic(images ...image.Image) *Static {
	return &Static{
		mutex:  new(sync.Mutex),
		images: images,
	}
}

// Capture returns the next frame.
func (s *Static) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if len(s.images) == 0 {
		return nil, fmt.Errorf("no frames: %w", model.CaptureUnavailableErr)
	}
	img := s.images[s.index]
	s.index = (s.index + 1) % len(s.images)
	return img, nil
}

var extensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
}

// File is an image file and the label inferred from its name.
// Label is -1 if the name does not end with any of the label names.
type File struct {
	Path  string
	Label model.Label
}

// Directory reads frames from the image files of a directory.
type Directory struct {
	mutex *sync.Mutex
	dir   string
	files []File
	index int
}

// NewDirectory lists the image files of the directory in name order.
// A file named like '042_triangle.png' is labeled 'triangle'.
func NewDirectory(dir string, labels model.Labels) (*Directory, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read directory '%s': %w", dir, err)
	}
	files := make([]File, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := extensions[ext]; !ok {
			continue
		}
		files = append(files, File{
			Path:  filepath.Join(dir, name),
			Label: Infer(labels, name),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	log.Debug().Str("dir", dir).Int("files", len(files)).Msg("opened directory")
	return &Directory{
		mutex: new(sync.Mutex),
		dir:   dir,
		files: files,
	}, nil
}

// Infer returns the label with the longest name that is a suffix of the file name, or -1.
func Infer(labels model.Labels, name string) model.Label {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	label := model.Label(-1)
	var longest int
	for i, l := range labels {
		if len(l) > longest && strings.HasSuffix(base, strings.ToLower(l)) {
			label = model.Label(i)
			longest = len(l)
		}
	}
	return label
}

// Files returns the files of the directory.
func (d *Directory) Files() []File {
	return d.files
}

// Filter returns a source over the files with the given label.
func (d *Directory) Filter(label model.Label) *Directory {
	files := make([]File, 0)
	for _, f := range d.files {
		if f.Label == label {
			files = append(files, f)
		}
	}
	return &Directory{
		mutex: new(sync.Mutex),
		dir:   d.dir,
		files: files,
	}
}

// Capture decodes the next file of the directory.
func (d *Directory) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mutex.Lock()
	if len(d.files) == 0 {
		d.mutex.Unlock()
		return nil, fmt.Errorf("no image files in '%s': %w", d.dir, model.CaptureUnavailableErr)
	}
	f := d.files[d.index]
	d.index = (d.index + 1) % len(d.files)
	d.mutex.Unlock()

	img, err := imaging.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("could not decode '%s': %w", f.Path, model.CaptureUnavailableErr)
	}
	return img, nil
}

// Examples embeds all labeled files of the directory.
// Files without a label are skipped.
func (d *Directory) Examples(ctx context.Context, extractor model.FeatureExtractor) ([]model.Example, error) {
	examples := make([]model.Example, 0, len(d.files))
	for _, f := range d.files {
		if f.Label < 0 {
			log.Warn().Str("file", f.Path).Msg("skipping file without label")
			continue
		}
		img, err := imaging.Open(f.Path)
		if err != nil {
			return nil, fmt.Errorf("could not decode '%s': %w", f.Path, err)
		}
		embedding, err := extractor.Embed(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("could not embed '%s': %w", f.Path, err)
		}
		examples = append(examples, model.Example{
			Embedding: embedding,
			Label:     f.Label,
		})
	}
	return examples, nil
}

// Screen captures a region of the screen.
// An empty Rect captures the whole screen.
type Screen struct {
	Rect image.Rectangle
}

// Capture grabs the screen region.
func (s Screen) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var img *image.RGBA
	var err error
	if s.Rect.Empty() {
		img, err = screenshot.CaptureScreen()
	} else {
		img, err = screenshot.CaptureRect(s.Rect)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.CaptureUnavailableErr, err)
	}
	return img, nil
}
