// Package host speaks Content-Length framed JSON-RPC over stdio and
// maps the editor's document lifecycle onto one Document, Runner and
// Overlay per open file. It is the only layer that knows about the wire
// protocol; the overlay underneath never sees it.
package host

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"squiggle/internal/cache"
	"squiggle/internal/checker"
	"squiggle/internal/config"
	"squiggle/internal/diag"
	"squiggle/internal/overlay"
	"squiggle/internal/panel"
	"squiggle/internal/source"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("host exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("host exit without shutdown")
)

// Options configures the stdio host.
type Options struct {
	Config config.Config
	// Check overrides the built-in check function.
	Check checker.CheckFunc
	// Cache, when set, seeds reopened documents with their previously
	// published diagnostics and is refreshed on close.
	Cache *cache.DiskCache
	Trace bool
}

type docEntry struct {
	doc    *source.Document
	runner *checker.Runner
	path   string
}

// Server owns the open documents and their overlays.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex

	mu                sync.Mutex
	docs              map[string]*docEntry
	shutdownRequested bool

	registry *overlay.Registry
	cfg      config.Config
	check    checker.CheckFunc
	cache    *cache.DiskCache
	trace    bool
}

// NewServer constructs a host reading from in and writing to out.
func NewServer(in io.Reader, out io.Writer, opts Options) *Server {
	check := opts.Check
	if check == nil {
		check = checker.BasicChecks
	}
	cfg := opts.Config
	if cfg.MaxDiagnostics <= 0 {
		cfg.MaxDiagnostics = config.Default().MaxDiagnostics
	}
	s := &Server{
		in:    bufio.NewReader(in),
		out:   bufio.NewWriter(out),
		docs:  make(map[string]*docEntry),
		cfg:   cfg,
		check: check,
		cache: opts.Cache,
		trace: opts.Trace,
	}
	s.registry = overlay.NewRegistry(s.buildOverlay)
	return s
}

// buildOverlay is the registry factory: it wires the already-registered
// document and runner for uri to a fresh overlay whose panel publishes
// over the wire.
func (s *Server) buildOverlay(uri string) (*overlay.Overlay, error) {
	s.mu.Lock()
	entry, ok := s.docs[uri]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("host: no open document for %q", uri)
	}
	model := panel.NewModel(func() {
		s.publish(uri)
	})
	return overlay.New(entry.doc, entry.runner, overlay.Options{
		Panel: model,
		Notify: func(sp source.Span) {
			if s.trace {
				s.logf("changed: uri=%s span=%s", uri, sp)
			}
		},
	}), nil
}

// Run serves requests until shutdown.
func (s *Server) Run(ctx context.Context) error {
	_ = ctx
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.isShutdownRequested() {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
		},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.closeAllDocs()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	doc := source.NewDocument(params.TextDocument.Text)
	entry := &docEntry{
		doc:    doc,
		runner: checker.NewRunner(doc, s.check, s.cfg.Debounce()),
		path:   uriToPath(uri),
	}
	s.mu.Lock()
	s.docs[uri] = entry
	s.mu.Unlock()

	if _, err := s.registry.Acquire(uri); err != nil {
		s.logf("failed to build overlay: %v", err)
		return nil
	}
	s.publishCached(uri, entry)
	entry.runner.Kick()
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	entry := s.lookupDoc(params.TextDocument.URI)
	if entry == nil {
		return nil
	}
	for _, change := range params.ContentChanges {
		edit := editForChange(entry.doc.Text(), change)
		v := entry.doc.Apply(edit)
		changed := source.Span{
			Start: edit.Span.Start,
			End:   edit.Span.Start + uint32(len(change.Text)),
		}
		entry.runner.Edited(changed, v)
	}
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	entry := s.lookupDoc(params.TextDocument.URI)
	if entry == nil {
		return nil
	}
	if params.Text != nil && *params.Text != entry.doc.Text() {
		v := entry.doc.Apply(source.Edit{Span: entry.doc.FullSpan(), Text: *params.Text})
		entry.runner.Edited(entry.doc.FullSpan(), v)
		return nil
	}
	entry.runner.Kick()
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	s.closeDoc(uri)
	if err := s.sendPublish(uri, nil); err != nil {
		s.logf("failed to clear diagnostics: %v", err)
	}
	return nil
}

// closeDoc tears down the overlay, persists the last published set, and
// forgets the document. In-flight rebuild results are discarded by the
// overlay itself.
func (s *Server) closeDoc(uri string) {
	s.mu.Lock()
	entry, ok := s.docs[uri]
	delete(s.docs, uri)
	s.mu.Unlock()
	if !ok {
		return
	}
	if ov, found := s.registry.Lookup(uri); found && s.cache != nil && entry.path != "" {
		items := make([]diag.DisplayDiagnostic, 0, len(ov.PanelContents()))
		for _, row := range ov.PanelContents() {
			items = append(items, row.Diag)
		}
		if err := s.cache.Put(entry.path, cache.HashText(entry.doc.Text()), items); err != nil {
			s.logf("failed to cache diagnostics: %v", err)
		}
	}
	s.registry.Close(uri)
	entry.runner.Close()
}

func (s *Server) closeAllDocs() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	s.mu.Unlock()
	for _, uri := range uris {
		s.closeDoc(uri)
		if err := s.sendPublish(uri, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}

func (s *Server) lookupDoc(uri string) *docEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[uri]
}

func (s *Server) isShutdownRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdownRequested
}

// publish sends the overlay's current panel contents for uri.
func (s *Server) publish(uri string) {
	entry := s.lookupDoc(uri)
	ov, ok := s.registry.Lookup(uri)
	if entry == nil || !ok {
		return
	}
	text := entry.doc.Text()
	rows := ov.PanelContents()
	list := make([]lspDiagnostic, 0, len(rows))
	for _, row := range rows {
		if len(list) >= s.cfg.MaxDiagnostics {
			break
		}
		list = append(list, lspDiagnostic{
			Range:    rangeForSpan(text, row.Span),
			Severity: severityCode(row.Diag.Severity),
			Source:   "squiggle",
			Message:  row.Diag.Message,
		})
	}
	if err := s.sendPublish(uri, list); err != nil {
		s.logf("failed to publish diagnostics: %v", err)
	}
	if s.trace {
		s.logf("publishDiagnostics: uri=%s version=%d diags=%d", uri, ov.Version(), len(list))
	}
}

// publishCached serves the previously persisted diagnostics for a
// freshly opened document, bridging the gap until the first rebuild.
func (s *Server) publishCached(uri string, entry *docEntry) {
	if s.cache == nil || entry.path == "" {
		return
	}
	text := entry.doc.Text()
	items, hit, err := s.cache.Get(entry.path, cache.HashText(text))
	if err != nil {
		s.logf("failed to read cached diagnostics: %v", err)
		return
	}
	if !hit {
		return
	}
	list := make([]lspDiagnostic, 0, len(items))
	for _, d := range items {
		if len(list) >= s.cfg.MaxDiagnostics {
			break
		}
		list = append(list, lspDiagnostic{
			Range:    rangeForSpan(text, d.Span),
			Severity: severityCode(d.Severity),
			Source:   "squiggle",
			Message:  d.Message,
		})
	}
	if err := s.sendPublish(uri, list); err != nil {
		s.logf("failed to publish cached diagnostics: %v", err)
	}
}

func severityCode(sev diag.DisplaySeverity) int {
	switch sev {
	case diag.DispSyntaxError:
		return 1
	case diag.DispWarning:
		return 2
	default:
		return 0
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "host: "+format+"\n", args...)
}
