package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Veraticus/catalog-imager/internal/common"
	"github.com/Veraticus/catalog-imager/internal/imagery"
	"github.com/Veraticus/catalog-imager/internal/model"
	"github.com/Veraticus/catalog-imager/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. IMAGER_UPDATE_DELAY.
const EnvPrefix = "IMAGER"

// DefaultDelay is the pause between successive writes.
const DefaultDelay = 100 * time.Millisecond

// legacyEnv maps config keys to the plain variables used by existing .env files.
var legacyEnv = map[string]string{
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.user":     "DB_USER",
	"database.password": "DB_PASSWORD",
	"database.name":     "DB_NAME",
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	schema := storage.DefaultSchema()

	v.SetDefault("database.driver", storage.KindMySQL)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.name", "coffeeshop")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("catalog.table", schema.Table)
	v.SetDefault("catalog.id_column", schema.IDColumn)
	v.SetDefault("catalog.name_column", schema.NameColumn)
	v.SetDefault("catalog.category_column", schema.CategoryColumn)
	v.SetDefault("catalog.image_column", schema.ImageColumn)

	v.SetDefault("update.delay", DefaultDelay)
	v.SetDefault("update.fallback_pool", string(model.PoolCoffee))
}

// BindEnv enables IMAGER_* overrides and the DB_* variables.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// LoadDotEnv loads variables from the given files (default .env) into the
// process environment. Missing files are ignored and existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(ExpandPath(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Connection returns the database connection options.
func Connection(v *viper.Viper) storage.ConnectionOptions {
	return storage.ConnectionOptions{
		Kind:     v.GetString("database.driver"),
		DSN:      v.GetString("database.dsn"),
		Host:     v.GetString("database.host"),
		Port:     v.GetInt("database.port"),
		User:     v.GetString("database.user"),
		Password: v.GetString("database.password"),
		Name:     v.GetString("database.name"),
		Path:     ExpandPath(v.GetString("database.path")),
		SSLMode:  v.GetString("database.sslmode"),
	}
}

// Schema returns the catalog table layout.
func Schema(v *viper.Viper) storage.Schema {
	return storage.Schema{
		Table:          v.GetString("catalog.table"),
		IDColumn:       v.GetString("catalog.id_column"),
		NameColumn:     v.GetString("catalog.name_column"),
		CategoryColumn: v.GetString("catalog.category_column"),
		ImageColumn:    v.GetString("catalog.image_column"),
	}
}

// Delay returns the pause between successive writes.
func Delay(v *viper.Viper) (time.Duration, error) {
	d := v.GetDuration("update.delay")
	if d < 0 {
		return 0, fmt.Errorf("%w: update.delay must not be negative", common.ErrInvalidConfig)
	}
	return d, nil
}

// Pools returns the configured image pools, or the built-in pools when
// none are configured.
func Pools(v *viper.Viper) (*imagery.PoolSet, error) {
	fallback := model.PoolName(v.GetString("update.fallback_pool"))

	if !v.IsSet("pools") {
		defaults := imagery.DefaultPools()
		set, err := imagery.NewPoolSet(defaults, fallback)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
		}
		return set, nil
	}

	raw := v.GetStringMapStringSlice("pools")
	pools := make(map[model.PoolName][]string, len(raw))
	for name, images := range raw {
		pools[model.PoolName(name)] = images
	}

	set, err := imagery.NewPoolSet(pools, fallback)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return set, nil
}

// Classifier builds the rule-based classifier over pools.
func Classifier(v *viper.Viper, pools *imagery.PoolSet) (*imagery.Classifier, error) {
	c, err := imagery.NewClassifier(imagery.DefaultRules(), model.PoolName(v.GetString("update.fallback_pool")), pools)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return c, nil
}
