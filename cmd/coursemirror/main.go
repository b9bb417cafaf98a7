package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/jgivc/coursemirror/internal/app"
	"github.com/jgivc/coursemirror/internal/common"
	"github.com/jgivc/coursemirror/internal/config"
)

const (
	envURL   = "COURSEMIRROR_URL"
	envToken = "COURSEMIRROR_TOKEN"
)

func main() {
	baseURL := flag.String("u", "", "Canvas base url")
	token := flag.String("t", "", "Canvas access token")
	credPath := flag.String("c", "", "Path to credential file")
	dest := flag.String("d", ".", "Destination folder")
	save := flag.Bool("s", false, "Save credentials to the credential file")
	workers := flag.Int("w", 0, "Download workers (default: number of CPUs)")
	logLevel := flag.String("log", config.LogLevelInfo, "Log level (debug|info|warn|error)")
	flag.Parse()

	// A missing .env is fine, flags and the credential file may cover everything.
	_ = godotenv.Load()

	fs := afero.NewOsFs()

	cfg, err := resolveConfig(fs, *baseURL, *token, *credPath, *save)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg.Destination = *dest
	cfg.Workers = *workers
	cfg.LogLevel = *logLevel
	cfg.SetDefaults()

	if err := ensureDestination(fs, cfg.Destination); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := app.New(cfg).Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig merges flags, environment and the credential file, in that
// order, and optionally persists the result.
func resolveConfig(fs afero.Fs, baseURL, token, credPath string, save bool) (*config.Config, error) {
	if baseURL == "" {
		baseURL = os.Getenv(envURL)
	}
	if token == "" {
		token = os.Getenv(envToken)
	}

	if (baseURL == "" || token == "") && credPath != "" {
		exists, err := afero.Exists(fs, credPath)
		if err != nil {
			return nil, fmt.Errorf("cannot stat credential file: %w", err)
		}

		if !exists && !save {
			return nil, fmt.Errorf("credential file %s does not exist", credPath)
		}

		if exists {
			creds, err := config.LoadCredentials(fs, credPath)
			if err != nil {
				return nil, err
			}

			if baseURL == "" {
				baseURL = creds.CanvasURL
			}
			if token == "" {
				token = creds.CanvasToken
			}
		}
	}

	if baseURL == "" || token == "" {
		return nil, fmt.Errorf("%w: provide url and token via -u and -t or via a credential file -c", common.ErrNoCredentials)
	}

	if save {
		if credPath == "" {
			return nil, fmt.Errorf("provide the destination path to save the credentials to")
		}

		creds := &config.Credentials{CanvasURL: baseURL, CanvasToken: token}
		if err := config.SaveCredentials(fs, credPath, creds); err != nil {
			return nil, err
		}
	}

	return &config.Config{BaseURL: baseURL, Token: token}, nil
}

func ensureDestination(fs afero.Fs, path string) error {
	exists, err := afero.DirExists(fs, path)
	if err != nil {
		return fmt.Errorf("cannot stat destination %s: %w", path, err)
	}

	if !exists {
		if err := fs.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", path, err)
		}
	}

	return nil
}
