package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/sirupsen/logrus"

	"lawscraper/pkg/categorize"
	"lawscraper/pkg/config"
	"lawscraper/pkg/dispatch"
	"lawscraper/pkg/extract"
	"lawscraper/pkg/fetch"
	"lawscraper/pkg/listing"
	"lawscraper/pkg/output"
	"lawscraper/pkg/search"
	"lawscraper/pkg/storage"
)

// Session wires the shared components for one or more pipeline runs: the
// fetcher, dispatcher, parsers, state store, output writer, and search sink.
// Sessions are created explicitly and closed when done; no package-level
// state.
type Session struct {
	cfg         *config.AppConfig
	log         *logrus.Entry
	fetcher     *fetch.Fetcher
	coordinator *dispatch.Coordinator
	parser      *listing.Parser
	extractor   *extract.Extractor
	categorizer *categorize.Categorizer
	converter   *md.Converter
	convertMu   sync.Mutex
	store       storage.DocumentStore
	sink        *search.Client
	writer      *output.Writer
	stopGC      context.CancelFunc
}

// NewSession builds a Session from configuration. With resume false the
// document state store starts empty; with resume true prior outcomes are
// kept and already-scraped documents are skipped.
func NewSession(cfg *config.AppConfig, log *logrus.Logger, resume bool) (*Session, error) {
	primary, err := url.Parse(cfg.Site.PrimaryBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse primary base URL: %w", err)
	}

	store, err := storage.NewBadgerStore(cfg.StateDir, primary.Host, resume, log.WithField("component", "storage"))
	if err != nil {
		return nil, err
	}

	sink, err := search.NewClient(cfg.Elasticsearch, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	writer, err := output.NewWriter(cfg.OutputDir, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	// The GC loop lives for the whole session; Close stops it before the
	// store shuts down. Matters for long-lived watch sessions.
	gcCtx, stopGC := context.WithCancel(context.Background())
	go store.RunGC(gcCtx, cfg.DBGCInterval)

	client := fetch.NewClient(cfg.HTTPClientSettings, log)
	return &Session{
		cfg:         cfg,
		log:         log.WithField("component", "pipeline"),
		fetcher:     fetch.NewFetcher(client, cfg, log),
		coordinator: dispatch.NewCoordinator(cfg, log),
		parser:      listing.NewParser(log),
		extractor:   extract.NewExtractor(log),
		categorizer: categorize.New(nil),
		converter:   md.NewConverter("", true, nil),
		store:       store,
		sink:        sink,
		writer:      writer,
		stopGC:      stopGC,
	}, nil
}

// Close releases the session's resources.
func (s *Session) Close() error {
	s.stopGC()
	return s.store.Close()
}

// primaryURL joins a site path onto the configured primary base.
func (s *Session) primaryURL(path string) string {
	base, err := url.Parse(s.cfg.Site.PrimaryBaseURL)
	if err != nil {
		return s.cfg.Site.PrimaryBaseURL + path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return s.cfg.Site.PrimaryBaseURL + path
	}
	return base.ResolveReference(ref).String()
}
