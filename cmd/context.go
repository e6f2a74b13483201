package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/config"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/dictionary"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/media"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/persistence"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/service"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/subtitle"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/tokenizer"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/vocab"
	"github.com/MimeLyc/subtitle-vocab-miner/pkg/log"
)

// commandContext lazily builds the shared dependencies of a command and
// releases them once it finishes.
type commandContext struct {
	envFile  *string
	logLevel *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
	logFile    *log.FileLogger

	storeOnce sync.Once
	store     *persistence.SQLiteStore
	storeErr  error

	tokOnce sync.Once
	tok     tokenizer.Tokenizer
	tokErr  error

	closers []func() error
}

func newCommandContext(envFile, logLevel *string) *commandContext {
	return &commandContext{
		envFile:  envFile,
		logLevel: logLevel,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := loadEnvFile(strings.TrimSpace(*c.envFile)); err != nil {
			c.configErr = err
			return
		}

		cfg, err := config.NewFromEnv()
		if err != nil {
			c.configErr = err
			return
		}
		settings, ok, err := config.LoadRuntimeSettingsIfExists(cfg.SettingsPath())
		if err != nil {
			c.configErr = err
			return
		}
		if ok {
			if cfg, err = config.NewFromEnv(config.WithRuntimeSettings(settings)); err != nil {
				c.configErr = err
				return
			}
		}
		if err := os.MkdirAll(cfg.System.DataDir, 0o755); err != nil {
			c.configErr = apperror.Wrap(err, apperror.ErrConfig, "create data directory")
			return
		}
		c.configErr = c.initLogger(cfg)
		c.config = cfg
	})
	return c.config, c.configErr
}

// loadEnvFile loads an explicit env file, or ./.env when it exists.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return apperror.Wrap(err, apperror.ErrConfig, "load env file").WithContext("path", path)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperror.Wrap(err, apperror.ErrConfig, "load .env")
	}
	return nil
}

// initLogger sends logs to stderr, or to the configured file, so stdout
// stays free for command output.
func (c *commandContext) initLogger(cfg *config.Config) error {
	levelName := cfg.System.LogLevel
	if c.logLevel != nil && strings.TrimSpace(*c.logLevel) != "" {
		levelName = *c.logLevel
	}
	level := log.ParseLevel(levelName)

	if cfg.System.LogFile == "" {
		log.SetLogger(log.NewWriterLogger(os.Stderr, level))
		return nil
	}
	fileLogger, err := log.NewFileLogger(cfg.System.LogFile, level)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrConfig, "open log file")
	}
	log.SetLogger(fileLogger.Logger)
	c.logFile = fileLogger
	c.closers = append(c.closers, fileLogger.Close)
	return nil
}

func (c *commandContext) ensureStore() (*persistence.SQLiteStore, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		store, err := persistence.NewSQLiteStore(cfg.DBPath())
		if err != nil {
			c.storeErr = err
			return
		}
		c.store = store
		c.closers = append(c.closers, store.Close)
	})
	return c.store, c.storeErr
}

func (c *commandContext) ensureTokenizer() (tokenizer.Tokenizer, error) {
	c.tokOnce.Do(func() {
		tok, err := tokenizer.NewKagome()
		if err != nil {
			c.tokErr = apperror.Wrap(err, apperror.ErrTokenizer, "load dictionary")
			return
		}
		c.tok = tok
	})
	return c.tok, c.tokErr
}

// newMiner wires a miner to the store and word lists. A preview miner
// still reads known words but writes nothing.
func (c *commandContext) newMiner(preview bool) (*service.Miner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	tok, err := c.ensureTokenizer()
	if err != nil {
		return nil, err
	}
	store, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	lists, err := vocab.NewWordListStore(cfg.Lists.BlacklistFile, cfg.Lists.WhitelistFile, 0)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, lists.Close)

	opts := []service.MinerOption{
		service.WithKnownWords(store),
		service.WithWordLists(lists),
		service.WithCardSink(store),
		service.WithStatsSink(store),
		service.WithPreview(preview),
	}
	if cfg.Media.Enabled && !preview {
		extractor, err := media.NewExtractor(media.Options{
			OutputDir:        cfg.MediaDir(),
			AudioPadding:     cfg.Media.Padding(),
			ScreenshotOffset: cfg.Media.Offset(),
			Workers:          cfg.Media.Workers,
		})
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrConfig, "prepare media extraction")
		}
		opts = append(opts, service.WithMediaExtractor(extractor))
	}
	dictOpts, err := dictionaryOptions(cfg, preview)
	if err != nil {
		return nil, err
	}
	opts = append(opts, dictOpts...)
	return service.NewMiner(tok, subtitle.NewReader(), service.SettingsFromConfig(cfg), opts...), nil
}

// dictionaryOptions loads the configured frequency list, definition sources
// and pitch accents. Definitions and pitch accents only end up on stored
// cards, so a preview skips them.
func dictionaryOptions(cfg *config.Config, preview bool) ([]service.MinerOption, error) {
	opts := make([]service.MinerOption, 0, 3)
	if path := cfg.Dict.FrequencyFile; path != "" {
		ranks, err := vocab.LoadFrequencyList(path)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrConfig, "load frequency list").WithContext("path", path)
		}
		log.Info("Loaded %d frequency ranks", len(ranks))
		opts = append(opts, service.WithFrequencyList(ranks))
	} else if cfg.Mining.MaxFrequencyRank > 0 {
		log.Warn("MINER_MAX_FREQUENCY_RANK is set without MINER_FREQUENCY_FILE, no word is ranked")
	}
	if preview {
		return opts, nil
	}

	chain := make(dictionary.Chain, 0, 2)
	if path := cfg.Dict.JMdictFile; path != "" {
		jmdict, err := dictionary.LoadJMdict(path)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrConfig, "load JMdict").WithContext("path", path)
		}
		log.Info("Loaded %d JMdict forms", jmdict.Len())
		chain = append(chain, jmdict)
	}
	if cfg.Dict.JishoEnabled {
		chain = append(chain, dictionary.NewJisho(
			dictionary.WithJishoURL(cfg.Dict.JishoURL),
			dictionary.WithJishoDelay(cfg.Dict.Delay()),
		))
	}
	if len(chain) > 0 {
		opts = append(opts, service.WithDictionary(chain))
	}

	if path := cfg.Dict.PitchAccentFile; path != "" {
		pitch, err := dictionary.LoadPitchAccents(path)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrConfig, "load pitch accents").WithContext("path", path)
		}
		log.Info("Loaded %d pitch accent entries", len(pitch))
		opts = append(opts, service.WithPitchAccents(pitch))
	}
	return opts, nil
}

// run wraps a command body so shared resources are released even when it
// fails.
func (c *commandContext) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer c.close()
		return fn(cmd, args)
	}
}

func (c *commandContext) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			fmt.Fprintf(os.Stderr, "close: %v\n", err)
		}
	}
	c.closers = nil
}
