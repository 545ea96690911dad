package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"coffre/internal/archive"
	"coffre/internal/security"
)

// Options controls profile loading.
type Options struct {
	// ProfilePath names a TOML profile. Empty means defaults only; a named
	// file that does not exist is an error, so typos never silently fall
	// back to defaults.
	ProfilePath string

	// SkipValidate loads without validation (e.g. for printing).
	SkipValidate bool
}

// Load builds the security and creation configurations with precedence:
// defaults, then profile file, then environment. Flag overrides are the
// caller's business.
func Load(opts Options) (*security.Config, *archive.CreationConfig, error) {
	cfg := security.DefaultConfig()
	ccfg := archive.DefaultCreationConfig()

	// Local dotenv files for developer ergonomics; explicit env still
	// wins because godotenv never overwrites existing variables.
	_ = godotenv.Load(".env.local", ".env")

	if opts.ProfilePath != "" {
		var profile Profile
		if _, err := toml.DecodeFile(opts.ProfilePath, &profile); err != nil {
			return nil, nil, fmt.Errorf("CONFIG_INVALID: profile %s: %w", opts.ProfilePath, err)
		}
		if err := profile.apply(cfg, ccfg); err != nil {
			return nil, nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, nil, err
	}

	if !opts.SkipValidate {
		if err := Validate(cfg, ccfg); err != nil {
			return nil, nil, err
		}
	}
	return cfg, ccfg, nil
}

// applyEnv overlays the COFFRE_* environment variables.
func applyEnv(cfg *security.Config) error {
	if v := os.Getenv("COFFRE_PRESET"); v == "permissive" {
		*cfg = *security.Permissive()
	}
	if err := envUint("COFFRE_MAX_FILE_SIZE", &cfg.MaxFileSize); err != nil {
		return err
	}
	if err := envUint("COFFRE_MAX_TOTAL_SIZE", &cfg.MaxTotalSize); err != nil {
		return err
	}
	if err := envInt("COFFRE_MAX_FILE_COUNT", &cfg.MaxFileCount); err != nil {
		return err
	}
	if err := envBool("COFFRE_ALLOW_SYMLINKS", &cfg.AllowSymlinks); err != nil {
		return err
	}
	if err := envBool("COFFRE_ALLOW_HARDLINKS", &cfg.AllowHardlinks); err != nil {
		return err
	}
	return nil
}

func envUint(name string, dst *uint64) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	parsed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("CONFIG_INVALID: %s=%q: %w", name, v, err)
	}
	*dst = parsed
	return nil
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("CONFIG_INVALID: %s=%q: %w", name, v, err)
	}
	*dst = parsed
	return nil
}

func envBool(name string, dst *bool) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("CONFIG_INVALID: %s=%q: %w", name, v, err)
	}
	*dst = parsed
	return nil
}
