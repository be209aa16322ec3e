package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/adapters/file"
	"github.com/aretw0/arbor/internal/adapters/memory"
	redisadapter "github.com/aretw0/arbor/internal/adapters/redis"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/ports"
)

// createLogger configures the application logger. In debug mode it
// writes to stderr, keeping stdout clean for command output.
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(os.Stderr, slog.LevelDebug)
	}
	return logging.NewNop()
}

// buildStore selects the session backend from flags.
func buildStore(cmd *cobra.Command) (ports.StateStore, error) {
	backend, _ := cmd.Flags().GetString("store")
	switch backend {
	case "memory":
		return memory.NewStore(), nil
	case "file":
		path, _ := cmd.Flags().GetString("store-path")
		return file.New(path), nil
	case "redis":
		url, _ := cmd.Flags().GetString("redis-url")
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return redisadapter.New(url, "", cfg.Store.RedisDB, redisadapter.WithTTL(cfg.Store.RedisTTL)), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (expected memory, file or redis)", backend)
	}
}

// buildInterpreter loads the manifest and wires the interpreter with the
// selected store and the builtin source modules.
func buildInterpreter(cmd *cobra.Command, opts ...arbor.Option) (*arbor.Interpreter, error) {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	debug, _ := cmd.Flags().GetBool("debug")

	store, err := buildStore(cmd)
	if err != nil {
		return nil, err
	}

	opts = append([]arbor.Option{
		arbor.WithStore(store),
		arbor.WithLogger(createLogger(debug)),
	}, opts...)

	interp, err := arbor.New(manifestPath, opts...)
	if err != nil {
		return nil, err
	}
	registerBuiltins(interp)
	return interp, nil
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", "file", "Session backend: memory, file or redis")
	cmd.Flags().String("store-path", "", "Directory for the file backend (default .arbor/sessions)")
	cmd.Flags().String("redis-url", "localhost:6379", "Address for the redis backend")
}
