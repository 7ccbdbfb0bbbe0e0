package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/goodocy/android-store/internal/config"
	"github.com/goodocy/android-store/internal/logging"
	"github.com/goodocy/android-store/internal/ownership"
	"github.com/goodocy/android-store/internal/store"
	boltstore "github.com/goodocy/android-store/internal/store/bolt"
	"github.com/goodocy/android-store/internal/store/memory"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	dataDir := flag.String("data-dir", "", "data directory (overrides config)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	inMemory := flag.Bool("memory", false, "use a volatile in-memory store")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <command> [args]\n\n%s\nFlags:\n", os.Args[0], commandHelp)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *dataDir != "" {
		cfg.Store.DataDir = *dataDir
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Init(cfg.Logging.Level, cfg.Logging.Format)

	st, err := openStore(cfg, *inMemory)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	codec, err := buildCodec(cfg, st, promptSecret)
	if err != nil {
		_ = st.Close()
		log.Fatalf("codec: %v", err)
	}

	owners := ownership.New(st, codec, ownership.WithBucket(cfg.Store.Bucket))
	err = run(owners, flag.Args(), os.Stdout)
	_ = st.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "storectl: %v\n", err)
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func openStore(cfg *config.Config, inMemory bool) (store.Store, error) {
	if inMemory {
		return memory.New(), nil
	}
	if err := os.MkdirAll(config.ExpandHome(cfg.Store.DataDir), 0700); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	st, err := boltstore.Open(cfg.StorePath())
	if err != nil {
		return nil, err
	}
	return st, nil
}

// promptSecret reads the codec secret from the terminal without echo.
func promptSecret() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("codec secret required: set codec.secret or codec.secret_file")
	}
	fmt.Fprint(os.Stderr, "Codec secret: ")
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading secret: %w", err)
	}
	return secret, nil
}
