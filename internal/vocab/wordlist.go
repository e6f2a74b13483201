package vocab

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
	"github.com/MimeLyc/subtitle-vocab-miner/pkg/log"
)

const defaultReloadDelay = 200 * time.Millisecond

// ParseWordList reads one word per line. Blank lines and lines starting
// with '#' are ignored.
func ParseWordList(data []byte) WordSet {
	words := make(WordSet)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words[line] = struct{}{}
	}
	return words
}

// WordListStore holds a blacklist and a whitelist loaded from plain text
// files and reloads them when the files change on disk. Either path may be
// empty, in which case that list stays empty.
type WordListStore struct {
	blacklistPath string
	whitelistPath string
	watcher       *fsnotify.Watcher
	reloadDelay   time.Duration

	mu        sync.RWMutex
	blacklist WordSet
	whitelist WordSet

	reloadMu    sync.Mutex
	reloadTimer *time.Timer
	done        chan struct{}
	wg          sync.WaitGroup
	closeOnce   sync.Once
	closeErr    error
}

// NewWordListStore loads both lists and starts watching them. A configured
// file that does not exist is a configuration error.
func NewWordListStore(blacklistPath, whitelistPath string, reloadDelay time.Duration) (*WordListStore, error) {
	if reloadDelay <= 0 {
		reloadDelay = defaultReloadDelay
	}
	s := &WordListStore{
		blacklistPath: cleanPath(blacklistPath),
		whitelistPath: cleanPath(whitelistPath),
		reloadDelay:   reloadDelay,
		blacklist:     make(WordSet),
		whitelist:     make(WordSet),
		done:          make(chan struct{}),
	}

	for _, path := range s.paths() {
		if _, err := os.Stat(path); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrConfig, "word list file not found").
				WithContext("path", path)
		}
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	if len(s.paths()) == 0 {
		return s, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	s.watcher = watcher

	dirs := make(map[string]struct{})
	for _, path := range s.paths() {
		dir := filepath.Dir(path)
		if _, ok := dirs[dir]; ok {
			continue
		}
		dirs[dir] = struct{}{}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	s.wg.Add(1)
	go s.run()

	return s, nil
}

func cleanPath(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	return filepath.Clean(path)
}

func (s *WordListStore) paths() []string {
	ret := make([]string, 0, 2)
	if s.blacklistPath != "" {
		ret = append(ret, s.blacklistPath)
	}
	if s.whitelistPath != "" {
		ret = append(ret, s.whitelistPath)
	}
	return ret
}

func (s *WordListStore) IsBlacklisted(word string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blacklist.Contains(word)
}

func (s *WordListStore) IsWhitelisted(word string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.whitelist.Contains(word)
}

// Counts returns the current blacklist and whitelist sizes.
func (s *WordListStore) Counts() (blacklisted, whitelisted int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blacklist), len(s.whitelist)
}

func (s *WordListStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)

		s.reloadMu.Lock()
		if s.reloadTimer != nil {
			s.reloadTimer.Stop()
			s.reloadTimer = nil
		}
		s.reloadMu.Unlock()

		if s.watcher != nil {
			s.closeErr = s.watcher.Close()
		}
		s.wg.Wait()
	})
	return s.closeErr
}

func (s *WordListStore) run() {
	defer s.wg.Done()

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handleEvent(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("word list watcher error: %v", err)
		case <-s.done:
			return
		}
	}
}

func (s *WordListStore) handleEvent(event fsnotify.Event) {
	name := filepath.Clean(event.Name)
	if name != s.blacklistPath && name != s.whitelistPath {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
		s.scheduleReload()
	}
}

func (s *WordListStore) scheduleReload() {
	select {
	case <-s.done:
		return
	default:
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.reloadTimer != nil {
		s.reloadTimer.Stop()
	}
	s.reloadTimer = time.AfterFunc(s.reloadDelay, func() {
		if err := s.reload(); err != nil {
			log.Error("word list reload failed: %v", err)
		}

		s.reloadMu.Lock()
		s.reloadTimer = nil
		s.reloadMu.Unlock()
	})
}

func (s *WordListStore) reload() error {
	blacklist, err := readWordList(s.blacklistPath)
	if err != nil {
		return err
	}
	whitelist, err := readWordList(s.whitelistPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.blacklist = blacklist
	s.whitelist = whitelist
	s.mu.Unlock()

	log.Info("loaded word lists: %d blacklisted, %d whitelisted", len(blacklist), len(whitelist))
	return nil
}

// readWordList treats a file removed after startup as an empty list.
func readWordList(path string) (WordSet, error) {
	if path == "" {
		return make(WordSet), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("word list %s missing; list is empty", path)
			return make(WordSet), nil
		}
		return nil, apperror.Wrap(err, apperror.ErrConfig, "read word list").WithContext("path", path)
	}
	return ParseWordList(data), nil
}
