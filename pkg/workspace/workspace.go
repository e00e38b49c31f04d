// Package workspace applies import edits to files on an afero filesystem.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/tsedit/pkg/cache"
	"github.com/Sumatoshi-tech/tsedit/pkg/change"
	"github.com/Sumatoshi-tech/tsedit/pkg/imports"
	"github.com/Sumatoshi-tech/tsedit/pkg/observability"
	"github.com/Sumatoshi-tech/tsedit/pkg/tsast"
)

const filePerm = 0o644

// Sentinel errors.
var (
	ErrFileTooLarge   = errors.New("file exceeds size limit")
	ErrFileModified   = errors.New("file changed since it was read")
	ErrReplayMismatch = errors.New("replayed changes do not match the edited text")
	ErrNotRegularFile = errors.New("not a regular file")
)

// Options configures a Workspace. Zero values disable the size limit and
// telemetry.
type Options struct {
	Tracer  trace.Tracer
	Metrics *observability.EditMetrics
	Logger  *slog.Logger
	Cache   *cache.ParseCache
	MaxSize int64
}

// Workspace reads, edits and writes source files. It implements change.Host.
type Workspace struct {
	fs      afero.Fs
	parser  *cache.Parser
	tracer  trace.Tracer
	metrics *observability.EditMetrics
	logger  *slog.Logger
	maxSize int64
}

// FileResult is the outcome of editing one file.
type FileResult struct {
	Path    string
	Before  string
	After   string
	Changes []change.Change
}

// Changed reports whether the edits altered the file text.
func (r *FileResult) Changed() bool {
	return r.Before != r.After
}

// New creates a Workspace over fs.
func New(fs afero.Fs, opts Options) *Workspace {
	ws := &Workspace{
		fs:      fs,
		parser:  cache.NewParser(nil, opts.Cache),
		tracer:  opts.Tracer,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		maxSize: opts.MaxSize,
	}

	if ws.tracer == nil {
		ws.tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	if ws.logger == nil {
		ws.logger = slog.Default()
	}

	return ws
}

// Fs returns the underlying filesystem.
func (w *Workspace) Fs() afero.Fs {
	return w.fs
}

// Read returns the text of path, enforcing the size limit.
func (w *Workspace) Read(path string) (string, error) {
	info, err := w.fs.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}

	if w.maxSize > 0 && info.Size() > w.maxSize {
		return "", fmt.Errorf("%w: %s is %s, limit %s", ErrFileTooLarge, path,
			humanSize(info.Size()), humanSize(w.maxSize))
	}

	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return string(data), nil
}

func humanSize(n int64) string {
	return humanize.IBytes(uint64(max(n, 0))) //nolint:gosec // clamped to non-negative
}

// Write replaces the text of path.
func (w *Workspace) Write(path, content string) error {
	if err := afero.WriteFile(w.fs, path, []byte(content), filePerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// Parse reads and parses path.
func (w *Workspace) Parse(ctx context.Context, path string) (*tsast.SourceFile, error) {
	text, err := w.Read(path)
	if err != nil {
		return nil, err
	}

	return w.parser.Parse(ctx, path, []byte(text))
}

// ImportsOf summarizes the import declarations of path.
func (w *Workspace) ImportsOf(ctx context.Context, path string) ([]tsast.ImportInfo, error) {
	sf, err := w.Parse(ctx, path)
	if err != nil {
		return nil, err
	}

	return sf.Imports(), nil
}

// AddImports applies reqs to path in order, re-parsing after every edit so
// each request sees the previous ones. Nothing is written; see Commit.
func (w *Workspace) AddImports(ctx context.Context, path string, reqs []imports.Request) (result *FileResult, err error) {
	ctx, span := w.tracer.Start(ctx, "workspace.AddImports",
		trace.WithAttributes(
			attribute.String("tsedit.file", path),
			attribute.Int("tsedit.requests", len(reqs)),
		),
	)
	defer span.End()

	started := time.Now()

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			return
		}

		if w.metrics != nil {
			w.metrics.RecordFile(ctx, result.Changed(), time.Since(started))
		}
	}()

	text, err := w.Read(path)
	if err != nil {
		return nil, err
	}

	result = &FileResult{Path: path, Before: text, After: text}

	for _, req := range reqs {
		ch, addErr := w.addImport(ctx, path, result.After, req)
		if addErr != nil {
			return nil, addErr
		}

		after, applyErr := change.ApplyToText(result.After, ch)
		if applyErr != nil {
			return nil, fmt.Errorf("apply %s to %s: %w", req.Symbol, path, applyErr)
		}

		result.After = after
		result.Changes = append(result.Changes, ch)
	}

	w.logger.DebugContext(ctx, "file edited",
		slog.String("file", path),
		slog.Int("changes", len(result.Changes)),
		slog.Bool("changed", result.Changed()),
	)

	return result, nil
}

func (w *Workspace) addImport(ctx context.Context, path, text string, req imports.Request) (change.Change, error) {
	ctx, span := w.tracer.Start(ctx, "workspace.InsertImport",
		trace.WithAttributes(
			attribute.String("tsedit.symbol", req.Symbol),
			attribute.String("tsedit.module", req.Module),
		),
	)
	defer span.End()

	ch, err := w.insert(ctx, path, text, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		w.recordImport(ctx, observability.OutcomeError)

		return nil, err
	}

	if ch.IsNoop() {
		w.recordImport(ctx, observability.OutcomeNoop)
	} else {
		w.recordImport(ctx, observability.OutcomeInserted)
	}

	span.SetAttributes(attribute.Bool("tsedit.noop", ch.IsNoop()))

	return ch, nil
}

func (w *Workspace) insert(ctx context.Context, path, text string, req imports.Request) (change.Change, error) {
	sf, err := w.parser.Parse(ctx, path, []byte(text))
	if err != nil {
		return nil, err
	}

	if sf.HasErrors {
		w.logger.WarnContext(ctx, "file has syntax errors", slog.String("file", path))
	}

	ch, err := imports.InsertImport(sf, path, req.Symbol, req.Module, req.Default)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return ch, nil
}

func (w *Workspace) recordImport(ctx context.Context, outcome string) {
	if w.metrics != nil {
		w.metrics.RecordImport(ctx, outcome)
	}
}

// AddImportsAll runs AddImports on every path. Files that fail are skipped
// and their errors joined; the other results are still returned.
func (w *Workspace) AddImportsAll(ctx context.Context, paths []string, reqs []imports.Request) ([]*FileResult, error) {
	results := make([]*FileResult, 0, len(paths))

	var errs []error

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := w.AddImports(ctx, path, reqs)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		results = append(results, result)
	}

	return results, errors.Join(errs...)
}

// Commit writes every changed result. Each file must still hold its Before
// text; its changes are replayed in order in memory and the file is written
// once.
func (w *Workspace) commit(result *FileResult) error {
	current, err := w.Read(result.Path)
	if err != nil {
		return err
	}

	if current != result.Before {
		return fmt.Errorf("%w: %s", ErrFileModified, result.Path)
	}

	staged := &stagedFile{path: result.Path, text: current}

	for _, ch := range result.Changes {
		if err := change.Apply(staged, ch); err != nil {
			return fmt.Errorf("commit %s: %w", result.Path, err)
		}
	}

	if staged.text != result.After {
		return fmt.Errorf("%w: %s", ErrReplayMismatch, result.Path)
	}

	if err := w.Write(result.Path, staged.text); err != nil {
		return err
	}

	w.logger.Info("file updated", slog.String("file", result.Path), slog.Int("changes", len(result.Changes)))

	return nil
}

// stagedFile is a change.Host holding one file in memory.
type stagedFile struct {
	path string
	text string
}

func (s *stagedFile) Read(path string) (string, error) {
	if path != s.path {
		return "", fmt.Errorf("%w: %s", afero.ErrFileNotFound, path)
	}

	return s.text, nil
}

func (s *stagedFile) Write(path, content string) error {
	if path != s.path {
		return fmt.Errorf("%w: %s", afero.ErrFileNotFound, path)
	}

	s.text = content

	return nil
}
