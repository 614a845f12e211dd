package device

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"
	"github.com/sirupsen/logrus"
)

// Track describes one playable file of the catalog.
type Track struct {
	Path string
	Name string
}

// Catalog is the ordered list of tracks found in the library folder. It is
// built once at startup and read-only afterwards.
type Catalog struct {
	tracks []Track
}

var audioFileExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

// NewCatalog scans the library folder for playable audio files. A missing
// folder or an empty scan result is an error: the player cannot start
// without tracks.
func NewCatalog(libraryFolder string) (*Catalog, error) {
	entries, err := os.ReadDir(libraryFolder)
	if err != nil {
		return nil, fmt.Errorf("unable to access library folder %s: %v", libraryFolder, err)
	}

	catalog := &Catalog{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !audioFileExtensions[ext] {
			continue
		}
		path := filepath.Join(libraryFolder, entry.Name())
		catalog.tracks = append(catalog.tracks, Track{
			Path: path,
			Name: trackName(path),
		})
	}

	if len(catalog.tracks) == 0 {
		return nil, fmt.Errorf("no audio file found in library folder %s", libraryFolder)
	}

	sort.Slice(catalog.tracks, func(i, j int) bool {
		return catalog.tracks[i].Path < catalog.tracks[j].Path
	})

	logrus.Infof("Loaded %d audio files from %s", len(catalog.tracks), libraryFolder)

	return catalog, nil
}

func (c *Catalog) Len() int {
	return len(c.tracks)
}

func (c *Catalog) Track(index int) Track {
	return c.tracks[index]
}

// trackName prefers the embedded title tag and falls back to the base
// filename without extension.
func trackName(path string) string {
	fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	f, err := os.Open(path)
	if err != nil {
		return fallback
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil || meta.Title() == "" {
		return fallback
	}
	return meta.Title()
}
