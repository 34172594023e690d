package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Input    InputConfig    `yaml:"input" mapstructure:"input"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Cluster  ClusterConfig  `yaml:"cluster" mapstructure:"cluster"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// InputConfig locates and decodes the yearly microdata files.
type InputConfig struct {
	Dir          string `yaml:"dir" mapstructure:"dir"`
	Encoding     string `yaml:"encoding" mapstructure:"encoding"`
	Delimiter    string `yaml:"delimiter" mapstructure:"delimiter"`
	TaxonomyFile string `yaml:"taxonomy_file" mapstructure:"taxonomy_file"`
}

// OutputConfig selects the export sinks.
type OutputConfig struct {
	Dir     string   `yaml:"dir" mapstructure:"dir"`
	Formats []string `yaml:"formats" mapstructure:"formats"`
}

// AnalysisConfig scopes the analysis.
type AnalysisConfig struct {
	Regions       []string `yaml:"regions" mapstructure:"regions"`
	ReferenceYear int      `yaml:"reference_year" mapstructure:"reference_year"` // 0: latest year loaded
	RankingSize   int      `yaml:"ranking_size" mapstructure:"ranking_size"`
	LowestSize    int      `yaml:"lowest_size" mapstructure:"lowest_size"`
}

// ClusterConfig configures k-means and the labeling rules.
type ClusterConfig struct {
	K              int     `yaml:"k" mapstructure:"k"`
	Restarts       int     `yaml:"restarts" mapstructure:"restarts"`
	Seed           uint64  `yaml:"seed" mapstructure:"seed"`
	MaxIter        int     `yaml:"max_iter" mapstructure:"max_iter"`
	Tolerance      float64 `yaml:"tolerance" mapstructure:"tolerance"`
	VolumeQuantile float64 `yaml:"volume_quantile" mapstructure:"volume_quantile"`
	Precedence     string  `yaml:"precedence" mapstructure:"precedence"`
}

// PipelineConfig configures year loading.
type PipelineConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
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
	v.SetEnvPrefix("DESIGUALDADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

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

	return &cfg, nil
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input.dir", ".")
	v.SetDefault("input.encoding", "latin1")
	v.SetDefault("input.delimiter", ";")
	v.SetDefault("input.taxonomy_file", "")
	v.SetDefault("output.dir", "out")
	v.SetDefault("output.formats", []string{"csv"})
	v.SetDefault("analysis.regions", []string{"Nordeste", "Sudeste"})
	v.SetDefault("analysis.reference_year", 0)
	v.SetDefault("analysis.ranking_size", 15)
	v.SetDefault("analysis.lowest_size", 10)
	v.SetDefault("cluster.k", 3)
	v.SetDefault("cluster.restarts", 10)
	v.SetDefault("cluster.seed", 42)
	v.SetDefault("cluster.max_iter", 300)
	v.SetDefault("cluster.tolerance", 1e-4)
	v.SetDefault("cluster.volume_quantile", 0.75)
	v.SetDefault("cluster.precedence", "disparity")
	v.SetDefault("pipeline.concurrency", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	if c.Input.Dir == "" {
		problems = append(problems, "input.dir is required")
	}
	if len([]rune(c.Input.Delimiter)) != 1 {
		problems = append(problems, fmt.Sprintf("input.delimiter must be a single character, got %q", c.Input.Delimiter))
	}
	if c.Output.Dir == "" {
		problems = append(problems, "output.dir is required")
	}
	if len(c.Analysis.Regions) == 0 {
		problems = append(problems, "analysis.regions must not be empty")
	}
	if c.Cluster.K < 1 {
		problems = append(problems, "cluster.k must be >= 1")
	}
	if c.Cluster.Restarts < 1 {
		problems = append(problems, "cluster.restarts must be >= 1")
	}
	if c.Cluster.VolumeQuantile < 0 || c.Cluster.VolumeQuantile > 1 {
		problems = append(problems, "cluster.volume_quantile must be between 0 and 1")
	}
	switch c.Cluster.Precedence {
	case "", "disparity", "priority":
	default:
		problems = append(problems, fmt.Sprintf("cluster.precedence must be disparity or priority, got %q", c.Cluster.Precedence))
	}
	if c.Pipeline.Concurrency < 1 || c.Pipeline.Concurrency > 32 {
		problems = append(problems, "pipeline.concurrency must be between 1 and 32")
	}
	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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
