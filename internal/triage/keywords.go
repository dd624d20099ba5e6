package triage

import (
	"bufio"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
)

// defaultPrankKeywords is the fixed heuristic list. A message containing any
// of these as a case-insensitive substring is treated as a prank and never
// persisted.
var defaultPrankKeywords = []string{"lol", "prank", "fake", "joke"}

// KeywordScreen is the prank-message heuristic. It starts with the built-in
// keyword list and can optionally follow a keyword file, hot-reloaded on
// change so operators can tune the list without a restart.
type KeywordScreen struct {
	mu       sync.RWMutex
	keywords []string

	watcher *fsnotify.Watcher
	logger  *pterm.Logger
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewKeywordScreen creates a screen with the built-in keyword list.
func NewKeywordScreen(logger *pterm.Logger) *KeywordScreen {
	return &KeywordScreen{
		keywords: append([]string(nil), defaultPrankKeywords...),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Match reports whether message trips the heuristic. Matching is
// case-insensitive substring; this is a hint, not an authoritative verdict.
func (s *KeywordScreen) Match(message string) bool {
	lowered := strings.ToLower(message)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, keyword := range s.keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// Keywords returns a copy of the active keyword list.
func (s *KeywordScreen) Keywords() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.keywords...)
}

// WatchFile loads keywords from path and reloads them whenever the file
// changes. A missing or unreadable file keeps the current list in place.
func (s *KeywordScreen) WatchFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.logger.Warn("Keyword file does not exist, keeping built-in prank keywords",
			s.logger.Args("path", path))
		return nil
	}

	if err := s.loadFile(path); err != nil {
		s.logger.Warn("Failed to load keyword file, keeping built-in prank keywords",
			s.logger.Args("path", path, "error", err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.WithCaller().Error("Failed to create keyword file watcher", s.logger.Args("error", err))
		return err
	}
	if err := watcher.Add(path); err != nil {
		s.logger.Warn("Failed to watch keyword file", s.logger.Args("path", path, "error", err))
		watcher.Close()
		return err
	}
	s.watcher = watcher

	s.wg.Add(1)
	go s.eventLoop(path)

	s.logger.Info("Watching prank keyword file", s.logger.Args("path", path))
	return nil
}

// eventLoop processes file system events
func (s *KeywordScreen) eventLoop(path string) {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			s.logger.Debug("Keyword file watcher stopped")
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				s.logger.Warn("Keyword watcher events channel closed")
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := s.loadFile(path); err != nil {
				s.logger.Warn("Keyword file reload failed, keeping previous list",
					s.logger.Args("path", path, "error", err))
				continue
			}
			s.logger.Info("Prank keyword list reloaded",
				s.logger.Args("path", path, "keywords", len(s.Keywords())))

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("Keyword watcher error", s.logger.Args("error", err))
		}
	}
}

// loadFile reads one keyword per line; blank lines and #-comments are skipped.
func (s *KeywordScreen) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var keywords []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keywords = append(keywords, line)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if len(keywords) == 0 {
		keywords = append([]string(nil), defaultPrankKeywords...)
	}

	s.mu.Lock()
	s.keywords = keywords
	s.mu.Unlock()
	return nil
}

// Stop shuts down the file watcher, if one was started.
func (s *KeywordScreen) Stop() {
	if s.watcher == nil {
		return
	}
	close(s.stopCh)
	s.watcher.Close()
	s.wg.Wait()
}
