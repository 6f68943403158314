// Package playlist loads the song selections written by the playlist
// generation runs.
package playlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrNoInput is returned when the input root doesn't exist.
var ErrNoInput = errors.New("playlist: input directory not found")

// ErrorLogDir is the reserved directory where generators dump failed runs.
const ErrorLogDir = "error_logs"

var (
	runFile         = regexp.MustCompile(`^playlist_run(\d+)_(.+)\.json$`)
	temperatureDir  = regexp.MustCompile(`^temperature_study_(\d+)_temp_(\d+(?:\.\d+)?)$`)
	temperatureFile = regexp.MustCompile(`^playlist_(.+)_run(\d+)_(.+)\.json$`)
)

// Selection is one song emitted by one run of one model.
type Selection struct {
	Model       string
	Run         int
	Timestamp   string
	File        string
	Temperature *float64
	Song        string
	Artist      string
}

// SongID is the aggregation key of the selection.
func (s Selection) SongID() string {
	return SongID(s.Song, s.Artist)
}

func SongID(song, artist string) string {
	return song + " - " + artist
}

type runOutput struct {
	Songs *[]struct {
		Song   string `json:"song"`
		Artist string `json:"artist"`
	} `json:"songs"`
}

// ModelName reverses the path safe substitution used in directory and file
// names.
func ModelName(s string) string {
	return strings.ReplaceAll(s, "_", "/")
}

// Load reads every model directory under root.
func Load(root string, debug bool) ([]Selection, error) {
	entries, err := readRoot(root)
	if err != nil {
		return nil, err
	}
	var files []source
	for _, e := range entries {
		if !e.IsDir() || e.Name() == ErrorLogDir || temperatureDir.MatchString(e.Name()) {
			continue
		}
		model := ModelName(e.Name())
		dir := filepath.Join(root, e.Name())
		runs, err := os.ReadDir(dir)
		if err != nil {
			log.Printf("playlist: couldn't read %s: %v\n", dir, err)
			continue
		}
		for _, f := range runs {
			m := runFile.FindStringSubmatch(f.Name())
			if f.IsDir() || m == nil {
				continue
			}
			run, _ := strconv.Atoi(m[1])
			files = append(files, source{
				path: filepath.Join(dir, f.Name()),
				base: Selection{
					Model:     model,
					Run:       run,
					Timestamp: strings.ReplaceAll(m[2], "_", ""),
					File:      f.Name(),
				},
			})
		}
	}
	return readAll(files, debug), nil
}

// LoadTemperature reads the temperature study directories under root.
// Directories not following the study naming are ignored.
func LoadTemperature(root string, debug bool) ([]Selection, error) {
	entries, err := readRoot(root)
	if err != nil {
		return nil, err
	}
	var files []source
	for _, e := range entries {
		dm := temperatureDir.FindStringSubmatch(e.Name())
		if !e.IsDir() || dm == nil {
			continue
		}
		temp, err := strconv.ParseFloat(dm[2], 64)
		if err != nil {
			continue
		}
		dir := filepath.Join(root, e.Name())
		runs, err := os.ReadDir(dir)
		if err != nil {
			log.Printf("playlist: couldn't read %s: %v\n", dir, err)
			continue
		}
		for _, f := range runs {
			m := temperatureFile.FindStringSubmatch(f.Name())
			if f.IsDir() || m == nil {
				continue
			}
			run, _ := strconv.Atoi(m[2])
			t := temp
			files = append(files, source{
				path: filepath.Join(dir, f.Name()),
				base: Selection{
					Model:       ModelName(m[1]),
					Run:         run,
					Timestamp:   strings.ReplaceAll(m[3], "_", ""),
					File:        f.Name(),
					Temperature: &t,
				},
			})
		}
	}
	return readAll(files, debug), nil
}

type source struct {
	path string
	base Selection
}

func readRoot(root string) ([]os.DirEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoInput, root)
		}
		return nil, fmt.Errorf("playlist: couldn't stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoInput, root)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("playlist: couldn't read %s: %w", root, err)
	}
	return entries, nil
}

func readAll(files []source, debug bool) []Selection {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i].base, files[j].base
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return files[i].path < files[j].path
	})
	var sels []Selection
	for _, f := range files {
		vs, err := readFile(f)
		if err != nil {
			log.Printf("playlist: couldn't load %s: %v\n", f.path, err)
			continue
		}
		if debug {
			log.Printf("playlist: loaded %d songs from %s\n", len(vs), f.path)
		}
		sels = append(sels, vs...)
	}
	return sels
}

func readFile(f source) ([]Selection, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	var out runOutput
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("couldn't unmarshal run: %w", err)
	}
	if out.Songs == nil {
		return nil, errors.New("missing songs")
	}
	var sels []Selection
	for i, s := range *out.Songs {
		if s.Song == "" || s.Artist == "" {
			log.Printf("playlist: %s: song %d has no song or artist, skipping\n", f.path, i)
			continue
		}
		sel := f.base
		sel.Song = s.Song
		sel.Artist = s.Artist
		sels = append(sels, sel)
	}
	return sels, nil
}
