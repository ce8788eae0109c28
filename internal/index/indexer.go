// Package index walks a Go project and records its packages, files,
// symbols and references into a Sourcetrail project database.
package index

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"trailhead/internal/builder"
	"trailhead/internal/config"
	"trailhead/internal/store"
)

// Indexer coordinates the indexing pipeline.
type Indexer struct {
	cfg        *config.Config
	projectDir string
	logger     *zap.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(idx *Indexer) {
		idx.logger = logger
	}
}

// NewIndexer creates an indexer for the given project directory.
func NewIndexer(cfg *config.Config, projectDir string, opts ...Option) *Indexer {
	absPath, err := filepath.Abs(projectDir)
	if err != nil {
		absPath = projectDir
	}
	idx := &Indexer{
		cfg:        cfg,
		projectDir: absPath,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Result holds the results of an indexing run.
type Result struct {
	FileCount   int
	SymbolCount int
	ErrorCount  int
	Duration    time.Duration
	DBPath      string
}

// Run executes the indexing pipeline: open or create the database, walk
// the project tree, record every source file, and commit.
func (idx *Indexer) Run() (*Result, error) {
	start := time.Now()

	dbPath := idx.cfg.DatabasePath(idx.projectDir)
	db := store.New(store.WithLogger(idx.logger))
	if store.Exists(dbPath) {
		if err := db.Open(dbPath); err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if idx.cfg.Database.ClearOnIndex {
			if err := db.Clear(); err != nil {
				return nil, fmt.Errorf("clearing database: %w", err)
			}
		}
	} else {
		if err := db.Create(dbPath); err != nil {
			return nil, fmt.Errorf("creating database: %w", err)
		}
	}
	defer db.Close()

	files, err := idx.collectFiles()
	if err != nil {
		return nil, err
	}
	idx.logger.Info("indexing project",
		zap.String("dir", idx.projectDir),
		zap.Int("files", len(files)))

	b := builder.New(db, builder.WithLogger(idx.logger))
	ex := newExtractor(b, idx.cfg, idx.logger)
	for _, file := range files {
		if err := ex.indexFile(file); err != nil {
			return nil, fmt.Errorf("indexing %s: %w", file, err)
		}
	}
	ex.resolveCalls()

	if err := db.SetMeta("indexed_at", time.Now().Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("storing metadata: %w", err)
	}

	if err := db.Commit(); err != nil {
		return nil, err
	}

	stats, err := db.GetStats()
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}

	return &Result{
		FileCount:   stats.FileCount,
		SymbolCount: stats.SymbolCount,
		ErrorCount:  stats.ErrorCount,
		Duration:    time.Since(start),
		DBPath:      db.Path(),
	}, nil
}

// collectFiles walks the project tree and returns the source files to
// index, honoring the exclusion config and the language map.
func (idx *Indexer) collectFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(idx.projectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != idx.projectDir && idx.cfg.IsExcludedDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, "_test.go") {
			return nil
		}
		if idx.cfg.LanguageForFile(path) == "" || idx.cfg.IsExcludedFile(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project directory %s: %w", idx.projectDir, err)
		}
		return nil, fmt.Errorf("walking project: %w", err)
	}
	return files, nil
}
