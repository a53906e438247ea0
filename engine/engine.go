package engine

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lexcodex/contour/frontend"
	"github.com/lexcodex/contour/lsp"
	"github.com/lexcodex/contour/outline"
	"github.com/lexcodex/contour/persistence"
)

// ErrUnsupported reports a file whose language has neither a built-in
// frontend nor a language server.
var ErrUnsupported = errors.New("no frontend for language")

// ErrCacheDisabled reports a cache operation with caching turned off.
var ErrCacheDisabled = errors.New("report cache disabled")

// UnavailableError reports a file the frontend could not build any parse
// tree for. The diagnostics explain why; there is no report to show.
type UnavailableError struct {
	Path        string
	Diagnostics []frontend.Diagnostic
	Err         error
}

func (e *UnavailableError) Error() string { return e.Err.Error() }

func (e *UnavailableError) Unwrap() error { return e.Err }

// Report is the outcome of outlining one file.
type Report struct {
	Path        string
	Language    string
	ContentHash string
	Output      string
	ErrorCount  int
	CacheHit    bool
	Duration    time.Duration
}

// ScanFailure pairs a path with the error that stopped its outline.
type ScanFailure struct {
	Path string
	Err  error
}

// ScanResult aggregates a workspace scan. Reports and Failures are sorted
// by path so repeated scans compare cleanly.
type ScanResult struct {
	Reports  []*Report
	Failures []ScanFailure
	Duration time.Duration
}

// Engine orchestrates detection, parsing, outline construction, and the
// report cache for one workspace.
type Engine struct {
	registry *frontend.Registry
	detector *frontend.Detector
	store    persistence.ReportStore
	config   *Config
	root     string

	mu            sync.Mutex
	active        map[string]bool
	clients       map[string]*lsp.Client
	failedServers map[string]error
}

// New builds an engine rooted at the given workspace directory.
func New(root string, cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	detector := frontend.NewDetector()
	for ext, lang := range cfg.Extensions {
		detector.Override(ext, lang)
	}

	var store persistence.ReportStore
	if cfg.Cache.Enabled {
		cachePath := cfg.Cache.Path
		if cachePath == "" {
			cachePath = defaultCacheFile
		}
		if !filepath.IsAbs(cachePath) {
			cachePath = filepath.Join(absRoot, cachePath)
		}
		s, err := persistence.NewSQLiteStore(cachePath)
		if err != nil {
			return nil, fmt.Errorf("open report cache: %w", err)
		}
		store = s
	}

	return &Engine{
		registry:      frontend.NewRegistry(),
		detector:      detector,
		store:         store,
		config:        cfg,
		root:          absRoot,
		active:        make(map[string]bool),
		clients:       make(map[string]*lsp.Client),
		failedServers: make(map[string]error),
	}, nil
}

// Root returns the absolute workspace root.
func (e *Engine) Root() string { return e.root }

// Languages lists the languages with a built-in frontend.
func (e *Engine) Languages() []string { return e.registry.Languages() }

// Detect exposes the configured language detector.
func (e *Engine) Detect(path string) string { return e.detector.Detect(path) }

// Close shuts down language servers and the report cache.
func (e *Engine) Close() error {
	e.mu.Lock()
	clients := e.clients
	e.clients = make(map[string]*lsp.Client)
	e.mu.Unlock()
	for _, client := range clients {
		_ = client.Close()
	}
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// OutlineFile runs the full pipeline for one file: detect, parse, build,
// render, cache. The returned report carries the rendered text; a file the
// frontend cannot produce a tree for fails with an UnavailableError and no
// report at all.
func (e *Engine) OutlineFile(path string) (*Report, error) {
	return e.OutlineFileAs(path, "")
}

// OutlineFileAs is OutlineFile with the language fixed up front instead of
// detected from the file name. An empty language falls back to detection.
func (e *Engine) OutlineFileAs(path, language string) (*Report, error) {
	e.mu.Lock()
	if e.active[path] {
		e.mu.Unlock()
		return nil, fmt.Errorf("outline already running for %s", path)
	}
	e.active[path] = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		delete(e.active, path)
		e.mu.Unlock()
	}()

	start := time.Now()
	if language == "" {
		language = e.detector.Detect(path)
	}
	if language == frontend.LanguageUnknown {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	hash := hashContent(content)

	if e.store != nil {
		// A forced language must not resurrect a report parsed as another one.
		if rec, err := e.store.GetReport(path, e.config.Nested); err == nil && rec != nil && rec.ContentHash == hash && rec.Language == language {
			return &Report{
				Path:        path,
				Language:    rec.Language,
				ContentHash: hash,
				Output:      rec.Report,
				ErrorCount:  rec.ErrorCount,
				CacheHit:    true,
				Duration:    time.Since(start),
			}, nil
		}
	}

	fe, err := e.frontendFor(language)
	if err != nil {
		return nil, err
	}
	res, err := fe.Parse(string(content), path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	doc, err := outline.Build(path, res, outline.WithNested(e.config.Nested))
	if err != nil {
		var diags []frontend.Diagnostic
		if res != nil {
			diags = res.Diagnostics
		}
		return nil, &UnavailableError{Path: path, Diagnostics: diags, Err: err}
	}

	report := &Report{
		Path:        path,
		Language:    language,
		ContentHash: hash,
		Output:      outline.Render(doc),
		ErrorCount:  len(doc.ParsingErrors),
		Duration:    time.Since(start),
	}
	if e.store != nil {
		rec := &persistence.ReportRecord{
			Path:        path,
			Nested:      e.config.Nested,
			Language:    language,
			ContentHash: hash,
			Report:      report.Output,
			ErrorCount:  report.ErrorCount,
			GeneratedAt: time.Now().UTC(),
		}
		if err := e.store.SaveReport(rec); err != nil {
			log.Printf("outline cache warning: %v", err)
		}
	}
	return report, nil
}

// OutlineWorkspace walks the workspace and outlines every file with a
// detectable language.
func (e *Engine) OutlineWorkspace() (*ScanResult, error) {
	start := time.Now()
	var files []string
	err := filepath.WalkDir(e.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != e.root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if e.shouldIgnore(path) {
			return nil
		}
		if e.detector.Detect(path) == frontend.LanguageUnknown {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &ScanResult{}
	workerCount := e.config.Workers
	if workerCount <= 0 {
		workerCount = 1
	}
	var wg sync.WaitGroup
	var resMu sync.Mutex
	fileCh := make(chan string)
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range fileCh {
				report, err := e.OutlineFile(file)
				resMu.Lock()
				if err != nil {
					result.Failures = append(result.Failures, ScanFailure{Path: file, Err: err})
				} else {
					result.Reports = append(result.Reports, report)
				}
				resMu.Unlock()
			}
		}()
	}
	for _, file := range files {
		fileCh <- file
	}
	close(fileCh)
	wg.Wait()

	sort.Slice(result.Reports, func(i, j int) bool { return result.Reports[i].Path < result.Reports[j].Path })
	sort.Slice(result.Failures, func(i, j int) bool { return result.Failures[i].Path < result.Failures[j].Path })
	result.Duration = time.Since(start)
	return result, nil
}

var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
}

func (e *Engine) shouldIgnore(path string) bool {
	for _, pattern := range e.config.Ignore {
		match, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && match {
			return true
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// frontendFor resolves the built-in frontend for a language, falling back
// to a language server.
func (e *Engine) frontendFor(language string) (frontend.Frontend, error) {
	if fe, ok := e.registry.Get(language); ok {
		return fe, nil
	}
	client, err := e.clientFor(language)
	if err != nil {
		return nil, err
	}
	return lsp.NewFrontend(client, language), nil
}

// clientFor returns the running language server for a language, starting
// one on first use. A spawn failure is remembered so a workspace scan does
// not retry the server once per file.
func (e *Engine) clientFor(language string) (*lsp.Client, error) {
	e.mu.Lock()
	if client, ok := e.clients[language]; ok {
		e.mu.Unlock()
		return client, nil
	}
	if err, ok := e.failedServers[language]; ok {
		e.mu.Unlock()
		return nil, err
	}
	e.mu.Unlock()

	cfg, ok := e.serverConfig(language)
	if !ok {
		return nil, fmt.Errorf("%s: %w", language, ErrUnsupported)
	}
	client, err := lsp.New(cfg)
	if err != nil {
		err = fmt.Errorf("start %s server: %w", language, err)
		e.mu.Lock()
		e.failedServers[language] = err
		e.mu.Unlock()
		return nil, err
	}

	e.mu.Lock()
	if existing, ok := e.clients[language]; ok {
		e.mu.Unlock()
		_ = client.Close()
		return existing, nil
	}
	e.clients[language] = client
	e.mu.Unlock()
	return client, nil
}

// serverConfig prefers a configured server over the stock catalog.
func (e *Engine) serverConfig(language string) (lsp.Config, bool) {
	for _, srv := range e.config.Servers {
		if srv.Language == language && srv.Command != "" {
			return lsp.Config{
				Command:    srv.Command,
				Args:       srv.Args,
				RootDir:    e.root,
				LanguageID: language,
			}, true
		}
	}
	cfg, ok := lsp.Known(language)
	if ok {
		cfg.RootDir = e.root
	}
	return cfg, ok
}

// CacheStats aggregates the report cache contents.
func (e *Engine) CacheStats() (*persistence.StoreStats, error) {
	if e.store == nil {
		return nil, ErrCacheDisabled
	}
	return e.store.Stats()
}

// CachedReports lists every cached report.
func (e *Engine) CachedReports() ([]*persistence.ReportRecord, error) {
	if e.store == nil {
		return nil, ErrCacheDisabled
	}
	return e.store.ListReports()
}

// ClearCache drops every cached report.
func (e *Engine) ClearCache() error {
	if e.store == nil {
		return ErrCacheDisabled
	}
	return e.store.Clear()
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("%x", sum[:])
}
