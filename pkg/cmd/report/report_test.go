package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/igolaizola/llmtunes"
)

func fixture(t *testing.T) llmtunes.Config {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"runs/openai_gpt-4o/playlist_run1_20241121_161159.json": `{"songs": [
			{"song": "Hey Jude", "artist": "The Beatles"},
			{"song": "Dynamite", "artist": "BTS"}
		]}`,
		"runs/openai_gpt-4o/playlist_run2_20241121_161300.json": `{"songs": [
			{"song": "Hey Jude", "artist": "The Beatles"}
		]}`,
		"runs/temperature_study_40_temp_0.2/playlist_openai_gpt-4o_run1_20241122_101010.json": `{"songs": [
			{"song": "Hey Jude", "artist": "The Beatles"}
		]}`,
		"genres.json": `{"The Beatles": ["rock", "british invasion"], "BTS": ["k-pop"]}`,
		"tracks.json": `{"Hey Jude - The Beatles": {"canonical_url": "https://open/hj", "album_name": "Hey Jude", "genres": ["rock"], "genre": "rock"}}`,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return llmtunes.Config{
		Input:      filepath.Join(root, "runs"),
		TrackCache: filepath.Join(root, "tracks.json"),
		GenreCache: filepath.Join(root, "genres.json"),
	}
}

func TestGenerate(t *testing.T) {
	out := t.TempDir()
	cfg := &Config{Config: fixture(t), Output: out, Temperature: true}
	files, err := Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Generate() err = %v; want nil", err)
	}
	want := map[string]bool{
		CSVFile:                     false,
		SummaryFile:                 false,
		"top_songs.png":             false,
		"genre_heatmap.png":         false,
		"temperature_diversity.png": false,
	}
	for _, f := range files {
		if _, ok := want[filepath.Base(f)]; ok {
			want[filepath.Base(f)] = true
		}
	}
	for name, ok := range want {
		if !ok {
			t.Errorf("Generate() files = %v; missing %s", files, name)
		}
	}

	b, err := os.ReadFile(filepath.Join(out, CSVFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 4 || lines[0] != "model,timestamp,song,artist,genres" {
		t.Fatalf("csv = %q; want header and 3 rows", b)
	}
	if lines[2] != "openai/gpt-4o,20241121161159,Dynamite,BTS,k-pop" {
		t.Fatalf("csv row = %q; want Dynamite row", lines[2])
	}

	b, err = os.ReadFile(filepath.Join(out, SummaryFile))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"model: openai/gpt-4o", "unique_songs: 2", "canonical_url: https://open/hj", "repetition_rate: 0"} {
		if !strings.Contains(string(b), s) {
			t.Errorf("summary doesn't contain %q", s)
		}
	}
}

func TestGenerateMissingInput(t *testing.T) {
	cfg := &Config{Config: fixture(t), Output: t.TempDir()}
	cfg.Input = filepath.Join(t.TempDir(), "missing")
	if _, err := Generate(context.Background(), cfg); err == nil {
		t.Fatalf("Generate() err = nil; want error")
	}
}
