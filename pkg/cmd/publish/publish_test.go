package publish

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/igolaizola/llmtunes"
	"github.com/igolaizola/llmtunes/pkg/cmd/migrate"
	"github.com/igolaizola/llmtunes/pkg/cmd/report"
	"github.com/igolaizola/llmtunes/pkg/storage"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPublishLocal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "runs", "model_a", "playlist_run1_20240101_000000.json"),
		`{"songs": [{"song": "Song", "artist": "Artist"}]}`)
	writeFile(t, filepath.Join(root, "genres.json"), `{"Artist": ["indie rock"]}`)
	db := filepath.Join(root, "llmtunes.db")

	if err := migrate.Run(ctx, &migrate.Config{
		DBType:     "sqlite",
		DBConn:     db,
		GenreCache: filepath.Join(root, "genres.json"),
	}); err != nil {
		t.Fatalf("migrate.Run() err = %v; want nil", err)
	}

	dest := filepath.Join(root, "published")
	cfg := &Config{
		Config: report.Config{
			Config: llmtunes.Config{
				Input:  filepath.Join(root, "runs"),
				DBType: "sqlite",
				DBConn: db,
			},
			Output: filepath.Join(root, "report"),
		},
		FSType: "local",
		FSConn: dest,
		Prefix: "2024",
	}
	if err := Run(ctx, cfg); err != nil {
		t.Fatalf("Run() err = %v; want nil", err)
	}

	b, err := os.ReadFile(filepath.Join(dest, "2024", report.CSVFile))
	if err != nil {
		t.Fatalf("published csv: %v", err)
	}
	if !strings.Contains(string(b), "model/a,20240101000000,Song,Artist,indie rock") {
		t.Fatalf("published csv = %q; want imported genre", b)
	}

	store, err := llmtunes.OpenStore(ctx, "sqlite", db, false)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	vs, err := store.ListArtifacts(ctx, 1, 100, "name asc", storage.Where("kind = ?", "csv"))
	if err != nil {
		t.Fatalf("ListArtifacts() err = %v; want nil", err)
	}
	if len(vs) != 1 || vs[0].Name != "2024/"+report.CSVFile || vs[0].Backend != "local" {
		t.Fatalf("ListArtifacts() = %+v; want one local csv", vs)
	}
	if vs[0].Size != int64(len(b)) || len(vs[0].Checksum) != 64 {
		t.Fatalf("artifact size, checksum = %d, %q; want %d and a sha256", vs[0].Size, vs[0].Checksum, len(b))
	}

	var out bytes.Buffer
	if err := printArtifacts(&out, vs); err != nil {
		t.Fatalf("printArtifacts() err = %v; want nil", err)
	}
	if !strings.Contains(out.String(), report.CSVFile) {
		t.Fatalf("printArtifacts() = %q; want %s", out.String(), report.CSVFile)
	}
}
