package profile

import (
	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/crafter/pkg/config"
)

// LoadConfig reads the profile's config overrides; none is an empty Config.
func LoadConfig(paths *Paths) (config.Config, error) {
	return config.Load(paths.Config())
}

// EditConfig sets key to *value in the profile's overrides, or removes the
// key when value is nil.
func EditConfig(paths *Paths, key string, value *string, logger hclog.Logger) error {
	cfg, err := LoadConfig(paths)
	if err != nil {
		return err
	}
	if value == nil {
		cfg.Remove(key)
		logger.Info("✏️ Removed profile config key", "key", key)
	} else {
		cfg.Set(key, *value)
		logger.Info("✏️ Set profile config key", "key", key)
	}
	return config.Save(paths.Config(), cfg)
}
