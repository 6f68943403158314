package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/igolaizola/llmtunes"
	"github.com/igolaizola/llmtunes/pkg/cmd/report"
	"github.com/igolaizola/llmtunes/pkg/filestore"
	"github.com/igolaizola/llmtunes/pkg/storage"
	"github.com/oklog/ulid/v2"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	report.Config

	FSType string
	FSConn string
	// Prefix is prepended to the uploaded file names.
	Prefix string
}

// Run generates the report and uploads every file of it.
func Run(ctx context.Context, cfg *Config) error {
	var uploaded int
	log.Println("publish: process started")
	defer func() {
		log.Printf("publish: process ended (%d)\n", uploaded)
	}()

	debug := func(format string, args ...interface{}) {
		if !cfg.Debug {
			return
		}
		format += "\n"
		log.Printf(format, args...)
	}

	files, err := report.Generate(ctx, &cfg.Config)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	var store *storage.Store
	if cfg.DBType != "" {
		store, err = llmtunes.OpenStore(ctx, cfg.DBType, cfg.DBConn, cfg.Debug)
		if err != nil {
			return fmt.Errorf("publish: %w", err)
		}
		defer store.Close()
	}
	fs, err := filestore.New(cfg.FSType, cfg.FSConn, cfg.Proxy, cfg.Debug, store)
	if err != nil {
		return fmt.Errorf("publish: couldn't create file storage: %w", err)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := path.Join(cfg.Prefix, filepath.Base(f))
		size, sum, err := checksum(f)
		if err != nil {
			return fmt.Errorf("publish: %w", err)
		}
		if err := fs.Upload(ctx, f, name); err != nil {
			return fmt.Errorf("publish: couldn't upload %s: %w", f, err)
		}
		uploaded++
		debug("publish: uploaded %s as %s (%d bytes)", f, name, size)
		if store == nil {
			continue
		}
		if err := store.SetArtifact(ctx, &storage.Artifact{
			ID:       ulid.Make().String(),
			Name:     name,
			Kind:     strings.TrimPrefix(filepath.Ext(f), "."),
			Backend:  fs.Type(),
			Size:     size,
			Checksum: sum,
		}); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}
	return nil
}

type ListConfig struct {
	Debug  bool
	DBType string
	DBConn string
	Page   int
	Limit  int
	Kind   string
}

// List prints the published artifacts, newest first.
func List(ctx context.Context, cfg *ListConfig) error {
	store, err := llmtunes.OpenStore(ctx, cfg.DBType, cfg.DBConn, cfg.Debug)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	defer store.Close()

	var filters []storage.Filter
	if cfg.Kind != "" {
		filters = append(filters, storage.Where("kind = ?", cfg.Kind))
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 100
	}
	vs, err := store.ListArtifacts(ctx, cfg.Page, limit, "created_at desc", filters...)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return printArtifacts(os.Stdout, vs)
}

func printArtifacts(w io.Writer, vs []*storage.Artifact) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Created", "Name", "Backend", "Size", "Checksum"})
	for _, v := range vs {
		row := []string{
			v.CreatedAt.Format("2006-01-02 15:04:05"),
			v.Name,
			v.Backend,
			strconv.FormatInt(v.Size, 10),
			v.Checksum[:min(12, len(v.Checksum))],
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func checksum(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("couldn't open %s: %w", path, err)
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", fmt.Errorf("couldn't read %s: %w", path, err)
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}
