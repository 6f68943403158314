package cli

import (
	"context"
	"flag"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/igolaizola/llmtunes"
	"github.com/igolaizola/llmtunes/pkg/cmd/chart"
	"github.com/igolaizola/llmtunes/pkg/cmd/export"
	"github.com/igolaizola/llmtunes/pkg/cmd/migrate"
	"github.com/igolaizola/llmtunes/pkg/cmd/publish"
	"github.com/igolaizola/llmtunes/pkg/cmd/report"
	"github.com/igolaizola/llmtunes/pkg/cmd/stats"
	"github.com/igolaizola/llmtunes/pkg/cmd/temperature"
	"github.com/igolaizola/llmtunes/pkg/cmd/warm"
	"github.com/peterbourgon/ff/ffyaml"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

const (
	name   = "llmtunes"
	prefix = "LLMTUNES"
)

func New(version, commit, date string) *ffcli.Command {
	fs := flag.NewFlagSet(name, flag.ExitOnError)

	return &ffcli.Command{
		ShortUsage: "llmtunes [flags] <subcommand>",
		FlagSet:    fs,
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			newVersionCommand(version, commit, date),
			newMigrateCommand(),
			newWarmCommand(),
			newStatsCommand(),
			newTemperatureCommand(),
			newExportCommand(),
			newChartCommand(),
			newReportCommand(),
			newPublishCommand(),
			newArtifactsCommand(),
		},
	}
}

func newVersionCommand(version, commit, date string) *ffcli.Command {
	return &ffcli.Command{
		Name:       "version",
		ShortUsage: "llmtunes version",
		ShortHelp:  "print version",
		Exec: func(ctx context.Context, args []string) error {
			v := version
			if v == "" {
				if buildInfo, ok := debug.ReadBuildInfo(); ok {
					v = buildInfo.Main.Version
				}
			}
			if v == "" {
				v = "dev"
			}
			versionFields := []string{v}
			if commit != "" {
				versionFields = append(versionFields, commit)
			}
			if date != "" {
				versionFields = append(versionFields, date)
			}
			fmt.Println(strings.Join(versionFields, " "))
			return nil
		},
	}
}

// command wraps a flag set with the options shared by every subcommand.
func command(cmd, help string, fs *flag.FlagSet, exec func(ctx context.Context) error) *ffcli.Command {
	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("llmtunes %s [flags]", cmd),
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithEnvVarPrefix(prefix),
		},
		ShortHelp: help,
		FlagSet:   fs,
		Exec: func(ctx context.Context, args []string) error {
			return exec(ctx)
		},
	}
}

func dbFlags(fs *flag.FlagSet, dbType, dbConn *string) {
	fs.StringVar(dbType, "db-type", "", "db type (sqlite, mysql, postgres), empty to use the json cache files")
	fs.StringVar(dbConn, "db-conn", "", "path for sqlite, dsn for mysql or postgres")
}

func sessionFlags(fs *flag.FlagSet, cfg *llmtunes.Config) {
	_ = fs.String("config", "", "config file (optional)")

	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.Input, "input", "outputs", "directory with the model run folders")
	fs.StringVar(&cfg.TrackCache, "track-cache", "data/spotify_cache.json", "track cache file")
	fs.StringVar(&cfg.GenreCache, "genre-cache", "data/genre_cache.json", "artist genre cache file")
	dbFlags(fs, &cfg.DBType, &cfg.DBConn)
	fs.StringVar(&cfg.SpotifyID, "spotify-id", "", "spotify client id (empty to use cached metadata only)")
	fs.StringVar(&cfg.SpotifySecret, "spotify-secret", "", "spotify client secret")
	fs.StringVar(&cfg.Proxy, "proxy", "", "proxy to use")
	fs.DurationVar(&cfg.Wait, "wait", 100*time.Millisecond, "wait time between spotify requests")
	fs.BoolVar(&cfg.CacheTransient, "cache-transient", true, "cache the fallback value also on timeouts and rate limits")
}

func newMigrateCommand() *ffcli.Command {
	cmd := "migrate"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &migrate.Config{}
	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	dbFlags(fs, &cfg.DBType, &cfg.DBConn)
	fs.StringVar(&cfg.TrackCache, "track-cache", "", "track cache file to import (optional)")
	fs.StringVar(&cfg.GenreCache, "genre-cache", "", "artist genre cache file to import (optional)")

	return command(cmd, "create the database tables and import json caches", fs, func(ctx context.Context) error {
		return migrate.Run(ctx, cfg)
	})
}

func newWarmCommand() *ffcli.Command {
	cmd := "warm"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)

	cfg := &warm.Config{}
	sessionFlags(fs, &cfg.Config)
	fs.BoolVar(&cfg.Temperature, "temperature", true, "also warm the temperature study runs")
	fs.BoolVar(&cfg.SkipTracks, "skip-tracks", false, "don't warm the track cache")
	fs.BoolVar(&cfg.SkipGenres, "skip-genres", false, "don't warm the artist genre cache")

	return command(cmd, "look up every song and artist in spotify", fs, func(ctx context.Context) error {
		return warm.Run(ctx, cfg)
	})
}

func newStatsCommand() *ffcli.Command {
	cmd := "stats"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)

	cfg := &stats.Config{}
	sessionFlags(fs, &cfg.Config)
	fs.StringVar(&cfg.Output, "output", "", "yaml file to write the summary to (optional)")
	fs.BoolVar(&cfg.Genres, "genres", true, "include the genre analysis")

	return command(cmd, "print model statistics", fs, func(ctx context.Context) error {
		return stats.Run(ctx, cfg)
	})
}

func newTemperatureCommand() *ffcli.Command {
	cmd := "temperature"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)

	cfg := &temperature.Config{}
	sessionFlags(fs, &cfg.Config)
	fs.StringVar(&cfg.Output, "output", "", "yaml file to write the stats to (optional)")

	return command(cmd, "print the temperature study statistics", fs, func(ctx context.Context) error {
		return temperature.Run(ctx, cfg)
	})
}

func newExportCommand() *ffcli.Command {
	cmd := "export"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)

	cfg := &export.Config{}
	sessionFlags(fs, &cfg.Config)
	fs.StringVar(&cfg.Output, "output", export.DefaultOutput, "csv output file")

	return command(cmd, "export every selection to csv", fs, func(ctx context.Context) error {
		return export.Run(ctx, cfg)
	})
}

func newChartCommand() *ffcli.Command {
	cmd := "chart"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)

	cfg := &chart.Config{}
	sessionFlags(fs, &cfg.Config)
	fs.StringVar(&cfg.Output, "output", chart.DefaultOutput, "output folder")
	fs.BoolVar(&cfg.Temperature, "temperature", true, "include the temperature study chart")

	return command(cmd, "render the charts", fs, func(ctx context.Context) error {
		return chart.Run(ctx, cfg)
	})
}

func reportFlags(fs *flag.FlagSet, cfg *report.Config) {
	sessionFlags(fs, &cfg.Config)
	fs.StringVar(&cfg.Output, "output", report.DefaultOutput, "output folder")
	fs.BoolVar(&cfg.Temperature, "temperature", true, "include the temperature study")
}

func newReportCommand() *ffcli.Command {
	cmd := "report"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)

	cfg := &report.Config{}
	reportFlags(fs, cfg)

	return command(cmd, "write the csv export, the yaml summary and the charts", fs, func(ctx context.Context) error {
		return report.Run(ctx, cfg)
	})
}

func newPublishCommand() *ffcli.Command {
	cmd := "publish"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)

	cfg := &publish.Config{}
	reportFlags(fs, &cfg.Config)
	fs.StringVar(&cfg.FSType, "fs-type", "local", "file storage type (local, s3, telegram)")
	fs.StringVar(&cfg.FSConn, "fs-conn", "", "folder for local, key:secret@bucket.region for s3, token@chat for telegram")
	fs.StringVar(&cfg.Prefix, "prefix", "", "prefix of the uploaded file names")

	return command(cmd, "generate the report and upload it", fs, func(ctx context.Context) error {
		return publish.Run(ctx, cfg)
	})
}

func newArtifactsCommand() *ffcli.Command {
	cmd := "artifacts"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &publish.ListConfig{}
	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	dbFlags(fs, &cfg.DBType, &cfg.DBConn)
	fs.IntVar(&cfg.Page, "page", 1, "page number")
	fs.IntVar(&cfg.Limit, "limit", 100, "artifacts per page")
	fs.StringVar(&cfg.Kind, "kind", "", "filter by extension (csv, yaml, png)")

	return command(cmd, "list the published artifacts", fs, func(ctx context.Context) error {
		return publish.List(ctx, cfg)
	})
}
