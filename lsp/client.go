package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"
)

// Config describes how to spin up a language server process.
type Config struct {
	Command    string
	Args       []string
	RootDir    string
	LanguageID string
}

// Client talks to one language server over stdio. It is safe for use from a
// single goroutine per file; the diagnostics map is guarded because the
// server pushes notifications on its own schedule.
type Client struct {
	cfg         Config
	cmd         *exec.Cmd
	conn        *jsonrpc2.Conn
	cancel      context.CancelFunc
	mu          sync.Mutex
	openedFiles map[protocol.DocumentURI]bool
	diagnostics map[string][]protocol.Diagnostic
}

// New launches the configured language server and performs the LSP
// handshake.
func New(cfg Config) (*Client, error) {
	if cfg.Command == "" {
		return nil, errors.New("command is required for LSP client")
	}
	if cfg.LanguageID == "" {
		return nil, errors.New("language id is required for LSP client")
	}
	root := cfg.RootDir
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = absRoot

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, err
	}

	rwc := &stdioReadWriteCloser{reader: stdout, writer: stdin}
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})

	client := &Client{
		cfg:         cfg,
		cmd:         cmd,
		cancel:      cancel,
		openedFiles: make(map[protocol.DocumentURI]bool),
		diagnostics: make(map[string][]protocol.Diagnostic),
	}

	handler := jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
		if !req.Notif {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled"}
		}
		switch req.Method {
		case "textDocument/publishDiagnostics":
			var params protocol.PublishDiagnosticsParams
			if err := json.Unmarshal(*req.Params, &params); err != nil {
				return nil, err
			}
			// Key on the path the server's URI resolves to, not the
			// request URI, so pushes survive URI normalization.
			client.mu.Lock()
			client.diagnostics[uriToPath(string(params.URI))] = params.Diagnostics
			client.mu.Unlock()
			return nil, nil
		default:
			return nil, nil
		}
	})

	conn := jsonrpc2.NewConn(ctx, stream, handler)
	client.conn = conn

	// Keep the pipe drained so the server cannot block on stderr.
	go io.Copy(io.Discard, stderr)

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, err
	}

	if err := client.initialize(ctx, absRoot); err != nil {
		cancel()
		_ = cmd.Process.Kill()
		return nil, err
	}

	return client, nil
}

func (c *Client) initialize(ctx context.Context, root string) error {
	params := &protocol.InitializeParams{
		ProcessID: int32(os.Getpid()),
		RootURI:   protocol.DocumentURI(pathToURI(root)),
		ClientInfo: &protocol.ClientInfo{
			Name:    "contour",
			Version: "0.1",
		},
		Capabilities: protocol.ClientCapabilities{
			TextDocument: &protocol.TextDocumentClientCapabilities{
				DocumentSymbol: &protocol.DocumentSymbolClientCapabilities{
					HierarchicalDocumentSymbolSupport: true,
				},
				PublishDiagnostics: &protocol.PublishDiagnosticsClientCapabilities{},
			},
		},
	}
	var result protocol.InitializeResult
	if err := c.conn.Call(ctx, "initialize", params, &result); err != nil {
		return err
	}
	return c.conn.Notify(ctx, "initialized", &protocol.InitializedParams{})
}

// Close terminates the underlying process and JSON-RPC connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	if c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
		_, _ = c.cmd.Process.Wait()
	}
	return nil
}

// ensureOpen sends didOpen once per file, with the text the caller already
// holds so the server and the outline agree on the exact content.
func (c *Client) ensureOpen(ctx context.Context, file string, text string) error {
	uri := protocol.DocumentURI(pathToURI(file))
	c.mu.Lock()
	if c.openedFiles[uri] {
		c.mu.Unlock()
		return nil
	}
	c.openedFiles[uri] = true
	c.mu.Unlock()

	params := protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: protocol.LanguageIdentifier(c.cfg.LanguageID),
			Version:    1,
			Text:       text,
		},
	}
	return c.conn.Notify(ctx, "textDocument/didOpen", params)
}

// DocumentSymbols fetches the symbol outline for a file. Servers answer with
// either hierarchical DocumentSymbol values or a flat SymbolInformation
// list; exactly one of the two returns is populated. A null response leaves
// both nil, which callers must treat as no outline rather than an empty one.
func (c *Client) DocumentSymbols(ctx context.Context, file string, text string) ([]protocol.DocumentSymbol, []protocol.SymbolInformation, error) {
	if err := c.ensureOpen(ctx, file, text); err != nil {
		return nil, nil, err
	}
	params := protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(pathToURI(file))},
	}
	var raw json.RawMessage
	if err := c.conn.Call(ctx, "textDocument/documentSymbol", params, &raw); err != nil {
		return nil, nil, err
	}
	return decodeSymbolResponse(raw)
}

// decodeSymbolResponse tells the two documentSymbol response shapes apart.
// Decode success alone cannot pick the branch: encoding/json drops unknown
// fields, so a flat SymbolInformation list also decodes into DocumentSymbol
// values, just with zeroed ranges. Only the flat shape carries a location,
// so a populated location URI marks the response as flat.
func decodeSymbolResponse(raw json.RawMessage) ([]protocol.DocumentSymbol, []protocol.SymbolInformation, error) {
	var infoSymbols []protocol.SymbolInformation
	if err := json.Unmarshal(raw, &infoSymbols); err == nil && len(infoSymbols) > 0 && infoSymbols[0].Location.URI != "" {
		return nil, infoSymbols, nil
	}
	var docSymbols []protocol.DocumentSymbol
	if err := json.Unmarshal(raw, &docSymbols); err == nil {
		return docSymbols, nil, nil
	}
	return nil, nil, errors.New("document symbol response not understood")
}

// Diagnostics waits for the server's publishDiagnostics notification for a
// file. Servers push these asynchronously after didOpen, so the wait is a
// bounded poll; a server that never publishes yields a timeout error.
func (c *Client) Diagnostics(ctx context.Context, file string, text string) ([]protocol.Diagnostic, error) {
	if err := c.ensureOpen(ctx, file, text); err != nil {
		return nil, err
	}
	// Round-trip through the URI form so both sides of the diagnostics
	// map normalize the same way.
	path := uriToPath(pathToURI(file))
	deadline := time.After(3 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		c.mu.Lock()
		if diag, ok := c.diagnostics[path]; ok {
			c.mu.Unlock()
			return diag, nil
		}
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, errors.New("diagnostics timeout")
		case <-ticker.C:
		}
	}
}

type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.reader.Read(p) }
func (s *stdioReadWriteCloser) Write(p []byte) (int, error) { return s.writer.Write(p) }
func (s *stdioReadWriteCloser) Close() error {
	_ = s.reader.Close()
	return s.writer.Close()
}

func pathToURI(path string) string {
	path = filepath.Clean(path)
	if runtime.GOOS == "windows" {
		path = strings.ReplaceAll(path, "\\", "/")
		return "file:///" + strings.ReplaceAll(path, ":", "%3A")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "file://" + path
}

func uriToPath(uri string) string {
	uri = strings.TrimPrefix(uri, "file://")
	uri = strings.ReplaceAll(uri, "%3A", ":")
	return filepath.FromSlash(uri)
}

// knownServers maps languages with no built-in frontend to the stock
// language server for that ecosystem.
var knownServers = map[string]Config{
	"rust":       {Command: "rust-analyzer", LanguageID: "rust"},
	"c":          {Command: "clangd", LanguageID: "c"},
	"cpp":        {Command: "clangd", LanguageID: "cpp"},
	"typescript": {Command: "typescript-language-server", Args: []string{"--stdio"}, LanguageID: "typescript"},
	"javascript": {Command: "typescript-language-server", Args: []string{"--stdio"}, LanguageID: "javascript"},
	"lua":        {Command: "lua-language-server", LanguageID: "lua"},
	"python":     {Command: "pylsp", LanguageID: "python"},
	"haskell":    {Command: "haskell-language-server-wrapper", Args: []string{"--lsp"}, LanguageID: "haskell"},
	"go":         {Command: "gopls", Args: []string{"serve"}, LanguageID: "go"},
}

// Known returns the stock server configuration for a language.
func Known(language string) (Config, bool) {
	cfg, ok := knownServers[language]
	return cfg, ok
}

// KnownLanguages lists the languages with a stock server, sorted.
func KnownLanguages() []string {
	languages := make([]string, 0, len(knownServers))
	for language := range knownServers {
		languages = append(languages, language)
	}
	sort.Strings(languages)
	return languages
}

// NewForLanguage launches the stock server for a language rooted at the
// given directory.
func NewForLanguage(language string, root string) (*Client, error) {
	cfg, ok := Known(language)
	if !ok {
		return nil, fmt.Errorf("no known language server for %s", language)
	}
	cfg.RootDir = root
	return New(cfg)
}
