package preset

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.followtheprocess.codes/msg"
	"go.followtheprocess.codes/preset/internal/convert"
	"go.followtheprocess.codes/preset/internal/format"
	"golang.org/x/sync/errgroup"
)

// DefaultJobs is the default number of files converted concurrently.
var DefaultJobs = runtime.NumCPU() //nolint:gochecknoglobals // Not known at compile time

// BatchOptions are the options passed to the batch subcommand.
type BatchOptions struct {
	// Target is the format to convert every file to.
	Target string

	// Output is the directory converted files are written to, the source
	// directory structure is recreated beneath it.
	Output string

	// Zip is the path of a zip archive to write the converted files into
	// instead of a directory.
	Zip string

	// Jobs is the maximum number of files converted concurrently.
	Jobs int

	// Debug enables debug logging.
	Debug bool
}

// Validate reports whether the BatchOptions is valid, returning a non-nil
// error if it's not.
func (b BatchOptions) Validate() error {
	if b.Target == "" {
		return errors.New("--to is required")
	}

	if _, err := format.Parse(b.Target); err != nil {
		return fmt.Errorf("invalid option for --to: %w", err)
	}

	if b.Zip != "" && b.Output != "" {
		return errors.New("--zip and --output are mutually exclusive")
	}

	if b.Jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", b.Jobs)
	}

	return nil
}

// batchResult is the outcome of converting a single file in a batch.
type batchResult struct {
	err    error          // Why the conversion failed, nil on success
	path   string         // The source file
	rel    string         // Directory of the source relative to the batch root, slash separated
	result convert.Result // The converted file
}

// Batch implements the batch subcommand, converting every preset under dir.
//
// Files are converted concurrently but reported in a stable order. One file
// failing does not stop the others, Batch returns an error at the end if
// any did.
func (p Preset) Batch(ctx context.Context, dir string, options BatchOptions) error {
	logger := p.logger.Prefixed("batch").With(slog.String("dir", dir))

	logger.Debug("Batch configuration", slog.String("options", fmt.Sprintf("%+v", options)))

	if err := options.Validate(); err != nil {
		return err
	}

	target, _ := format.Parse(options.Target)

	paths, err := collect(dir, func(name string) bool {
		_, err := format.Parse(format.Ext(name))
		return err == nil
	})
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		return fmt.Errorf("no presets found in %s", dir)
	}

	logger.Debug("Collected presets", slog.Int("number", len(paths)), slog.Int("jobs", options.Jobs))

	start := time.Now()
	results := make([]batchResult, len(paths))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(options.Jobs)

	for i, source := range paths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i] = p.convertOne(dir, source, target)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}

	logger.Debug("Converted batch", slog.Duration("took", time.Since(start)))

	if options.Zip != "" {
		err = writeZip(options.Zip, results)
	} else {
		out := options.Output
		if out == "" {
			out = dir
		}

		err = writeDir(out, results)
	}

	if err != nil {
		return err
	}

	failed := 0

	for _, result := range results {
		if result.err != nil {
			failed++

			msg.Ferror(p.stdout, "%s: %v", result.path, result.err)

			continue
		}

		msg.Fsuccess(p.stdout, "%s -> %s (%d settings)", result.path, result.result.Name, result.result.Count)
	}

	if failed != 0 {
		return fmt.Errorf("%d of %d presets failed to convert", failed, len(results))
	}

	if options.Zip != "" {
		msg.Fsuccess(p.stdout, "Wrote %d presets to %s", len(results), options.Zip)
	}

	return nil
}

// convertOne converts a single file of a batch rooted at root.
func (p Preset) convertOne(root, source string, target format.Format) batchResult {
	result := batchResult{path: source}

	rel, err := filepath.Rel(root, filepath.Dir(source))
	if err != nil {
		result.err = err
		return result
	}

	result.rel = filepath.ToSlash(rel)

	data, detected, err := readPreset(source)
	if err != nil {
		result.err = err
		return result
	}

	result.result, result.err = p.converter.Convert(convert.Request{
		Name:   source,
		Data:   data,
		Source: detected,
		Target: target,
	})

	return result
}

// outputNames returns the slash separated output path of every successful result,
// relative to the output root, with clashing names given a numeric suffix.
//
// Results that failed get an empty name.
func outputNames(results []batchResult) []string {
	names := make([]string, len(results))
	seen := make(map[string]bool, len(results))

	for i, result := range results {
		if result.err != nil {
			continue
		}

		name := path.Join(result.rel, result.result.Name)

		ext := path.Ext(name)
		stem := strings.TrimSuffix(name, ext)

		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s-%d%s", stem, n, ext)
		}

		seen[name] = true
		names[i] = name
	}

	return names
}

// writeDir writes every successful result beneath dir.
func writeDir(dir string, results []batchResult) error {
	for i, name := range outputNames(results) {
		if name == "" {
			continue
		}

		out := filepath.Join(dir, filepath.FromSlash(name))

		if err := checkOverwrite(results[i].path, out); err != nil {
			results[i].err = err
			continue
		}

		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("could not create output directory: %w", err)
		}

		if err := os.WriteFile(out, results[i].result.Data, 0o644); err != nil {
			return fmt.Errorf("could not write %s: %w", out, err)
		}
	}

	return nil
}

// writeZip writes every successful result into a new zip archive at file.
func writeZip(file string, results []batchResult) (err error) {
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("could not create zip archive: %w", err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("could not close zip archive: %w", closeErr)
		}
	}()

	archive := zip.NewWriter(f)

	for i, name := range outputNames(results) {
		if name == "" {
			continue
		}

		w, err := archive.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("could not add %s to zip archive: %w", name, err)
		}

		if _, err := w.Write(results[i].result.Data); err != nil {
			return fmt.Errorf("could not write %s to zip archive: %w", name, err)
		}
	}

	if err := archive.Close(); err != nil {
		return fmt.Errorf("could not finish zip archive: %w", err)
	}

	return nil
}
