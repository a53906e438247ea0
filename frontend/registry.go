package frontend

import (
	"path/filepath"
	"sort"
	"strings"
)

// LanguageUnknown is returned by the detector when no mapping matches.
const LanguageUnknown = "unknown"

// Registry manages the available frontends, keyed by language.
type Registry struct {
	frontends map[string]Frontend
}

// NewRegistry creates a registry with the built-in frontends.
func NewRegistry() *Registry {
	registry := &Registry{
		frontends: make(map[string]Frontend),
	}

	registry.Register(NewGoFrontend())
	registry.Register(NewMarkdownFrontend())

	return registry
}

// Register adds a frontend, replacing any previous one for the same language.
func (r *Registry) Register(f Frontend) {
	r.frontends[f.Language()] = f
}

// Get returns the frontend for a language.
func (r *Registry) Get(language string) (Frontend, bool) {
	f, ok := r.frontends[language]
	return f, ok
}

// Languages lists the registered languages in sorted order.
func (r *Registry) Languages() []string {
	langs := make([]string, 0, len(r.frontends))
	for lang := range r.frontends {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Detector maps file paths to language names.
type Detector struct {
	extensionMap map[string]string
	filenameMap  map[string]string
}

// NewDetector creates a detector with the default mappings.
func NewDetector() *Detector {
	return &Detector{
		extensionMap: map[string]string{
			".go":       "go",
			".md":       "markdown",
			".markdown": "markdown",
			".rs":       "rust",
			".c":        "c",
			".h":        "c",
			".cpp":      "cpp",
			".cc":       "cpp",
			".hpp":      "cpp",
			".ts":       "typescript",
			".tsx":      "typescript",
			".js":       "javascript",
			".jsx":      "javascript",
			".py":       "python",
			".lua":      "lua",
			".hs":       "haskell",
		},
		filenameMap: map[string]string{
			"README": "markdown",
		},
	}
}

// Override maps an extension to a language, replacing any default. The
// extension must include its leading dot.
func (d *Detector) Override(ext, language string) {
	d.extensionMap[strings.ToLower(ext)] = language
}

// Detect returns the language for a file path, or LanguageUnknown.
func (d *Detector) Detect(filePath string) string {
	base := filepath.Base(filePath)
	if lang, ok := d.filenameMap[base]; ok {
		return lang
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	if lang, ok := d.extensionMap[ext]; ok {
		return lang
	}

	return LanguageUnknown
}
