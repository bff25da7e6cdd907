package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/catalog-recon/internal/recon"
)

// Config holds the full application configuration.
type Config struct {
	CRM          CRMConfig        `yaml:"crm" mapstructure:"crm"`
	FieldService RESTSourceConfig `yaml:"field_service" mapstructure:"field_service"`
	Inventory    RESTSourceConfig `yaml:"inventory" mapstructure:"inventory"`
	Recon        recon.Config     `yaml:"recon" mapstructure:"recon"`
	Store        StoreConfig      `yaml:"store" mapstructure:"store"`
	Server       ServerConfig     `yaml:"server" mapstructure:"server"`
	Log          LogConfig        `yaml:"log" mapstructure:"log"`
}

// CRMConfig holds Salesforce JWT auth settings for the CRM product catalog.
type CRMConfig struct {
	ClientID  string  `yaml:"client_id" mapstructure:"client_id"`
	Username  string  `yaml:"username" mapstructure:"username"`
	KeyPath   string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL  string  `yaml:"login_url" mapstructure:"login_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// Configured reports whether the CRM source has credentials.
func (c CRMConfig) Configured() bool {
	return c.ClientID != "" && c.Username != "" && c.KeyPath != ""
}

// RESTSourceConfig holds settings for a paginated JSON catalog API
// (field service, inventory).
type RESTSourceConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	PageSize    int     `yaml:"page_size" mapstructure:"page_size"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// Configured reports whether the REST source has an endpoint.
func (c RESTSourceConfig) Configured() bool {
	return c.BaseURL != ""
}

// StoreConfig configures report persistence.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CATRECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "catalog-recon.db")
	v.SetDefault("crm.login_url", "https://login.salesforce.com")
	v.SetDefault("crm.rate_limit", 5)
	v.SetDefault("field_service.page_size", 200)
	v.SetDefault("field_service.timeout_secs", 30)
	v.SetDefault("field_service.rate_limit", 10)
	v.SetDefault("inventory.page_size", 200)
	v.SetDefault("inventory.timeout_secs", 30)
	v.SetDefault("inventory.rate_limit", 10)

	setReconDefaults(v, recon.DefaultConfig())

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Recon.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setReconDefaults registers every engine weight and threshold so operators
// can override any single value without restating the rest.
func setReconDefaults(v *viper.Viper, def recon.Config) {
	v.SetDefault("recon.score.identifier_weight", def.Score.IdentifierWeight)
	v.SetDefault("recon.score.sku_exact_weight", def.Score.SKUExactWeight)
	v.SetDefault("recon.score.sku_partial_weight", def.Score.SKUPartialWeight)
	v.SetDefault("recon.score.name_very_close_weight", def.Score.NameVeryCloseWeight)
	v.SetDefault("recon.score.name_similar_weight", def.Score.NameSimilarWeight)
	v.SetDefault("recon.score.name_overlap_weight", def.Score.NameOverlapWeight)
	v.SetDefault("recon.score.desc_similar_weight", def.Score.DescSimilarWeight)
	v.SetDefault("recon.score.desc_overlap_weight", def.Score.DescOverlapWeight)
	v.SetDefault("recon.score.price_close_weight", def.Score.PriceCloseWeight)
	v.SetDefault("recon.score.price_similar_weight", def.Score.PriceSimilarWeight)
	v.SetDefault("recon.score.price_nearby_weight", def.Score.PriceNearbyWeight)
	v.SetDefault("recon.score.name_very_close_jaccard", def.Score.NameVeryCloseJaccard)
	v.SetDefault("recon.score.name_similar_jaccard", def.Score.NameSimilarJaccard)
	v.SetDefault("recon.score.name_overlap_jaccard", def.Score.NameOverlapJaccard)
	v.SetDefault("recon.score.desc_similar_jaccard", def.Score.DescSimilarJaccard)
	v.SetDefault("recon.score.desc_overlap_jaccard", def.Score.DescOverlapJaccard)
	v.SetDefault("recon.score.price_close_rel_diff", def.Score.PriceCloseRelDiff)
	v.SetDefault("recon.score.price_similar_rel_diff", def.Score.PriceSimilarRelDiff)
	v.SetDefault("recon.score.price_nearby_rel_diff", def.Score.PriceNearbyRelDiff)
	v.SetDefault("recon.score.min_partial_sku_len", def.Score.MinPartialSKULen)
	v.SetDefault("recon.finder.match_threshold", def.Finder.MatchThreshold)
	v.SetDefault("recon.finder.max_per_source", def.Finder.MaxPerSource)
	v.SetDefault("recon.finder.quick_name_jaccard", def.Finder.QuickNameJaccard)
	v.SetDefault("recon.finder.quick_price_rel_diff", def.Finder.QuickPriceRelDiff)
	v.SetDefault("recon.merge.min_score", def.Merge.MinScore)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
