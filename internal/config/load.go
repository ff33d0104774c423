package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gadgetbench/internal/matrix"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultTargets maps each sample benchmark to the artifact its build
// produces, relative to the build directory.
var DefaultTargets = map[string]string{
	"mimalloc":       "libmimalloc.so.3.0",
	"chocolate-doom": "src/chocolate-doom",
	"zlib":           "libz.so.1.3.1",
}

// Load initializes the configuration from file and environment variables.
// A missing config.yaml is fine; an explicitly named file that cannot be
// read is an error.
func Load(cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("GADGETBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && (errors.As(err, &notFound) || os.IsNotExist(err)) {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	return nil
}

func setDefaults() {
	viper.SetDefault("paths.samples", "samples")
	viper.SetDefault("paths.binaries", "binaries")
	viper.SetDefault("paths.results", "results")
	viper.SetDefault("paths.report", "results.xlsx")
	viper.SetDefault("paths.manifest", "binaries/manifest.json")

	viper.SetDefault("toolchain.clang", "llvm-ropsched/build/bin/clang")
	viper.SetDefault("toolchain.gsa", "GadgetSetAnalyzer")
	viper.SetDefault("toolchain.python", "python3")
	viper.SetDefault("toolchain.cmake", "cmake")

	viper.SetDefault("base_flags", matrix.DefaultBaseFlags)
	for name, target := range DefaultTargets {
		viper.SetDefault("targets."+name, target)
	}

	viper.SetDefault("history.type", "sqlite")
	viper.SetDefault("history.dsn", ".gadgetbench.db")
	viper.SetDefault("metrics.textfile", "")
	viper.SetDefault("notifications.slack.webhook_url", "")
	viper.SetDefault("log.file", "")
	viper.SetDefault("verbose", false)
}

// Settings is a typed snapshot of the loaded configuration.
type Settings struct {
	SamplesDir   string
	BinariesDir  string
	ResultsDir   string
	ReportPath   string
	ManifestPath string

	Clang  string
	GSA    string
	Python string
	CMake  string

	BaseFlags string
	Targets   map[string]string

	HistoryType string
	HistoryDSN  string

	MetricsTextfile string
	SlackWebhookURL string
	LogFile         string
	Verbose         bool
}

// Current reads the active viper configuration.
func Current() Settings {
	// targets.* may come partly from the config file and partly from
	// defaults, so resolve each key individually.
	targets := make(map[string]string)
	for name := range DefaultTargets {
		targets[name] = viper.GetString("targets." + name)
	}
	for name := range viper.GetStringMap("targets") {
		targets[name] = viper.GetString("targets." + name)
	}

	return Settings{
		SamplesDir:      viper.GetString("paths.samples"),
		BinariesDir:     viper.GetString("paths.binaries"),
		ResultsDir:      viper.GetString("paths.results"),
		ReportPath:      viper.GetString("paths.report"),
		ManifestPath:    viper.GetString("paths.manifest"),
		Clang:           viper.GetString("toolchain.clang"),
		GSA:             viper.GetString("toolchain.gsa"),
		Python:          viper.GetString("toolchain.python"),
		CMake:           viper.GetString("toolchain.cmake"),
		BaseFlags:       viper.GetString("base_flags"),
		Targets:         targets,
		HistoryType:     viper.GetString("history.type"),
		HistoryDSN:      viper.GetString("history.dsn"),
		MetricsTextfile: viper.GetString("metrics.textfile"),
		SlackWebhookURL: viper.GetString("notifications.slack.webhook_url"),
		LogFile:         viper.GetString("log.file"),
		Verbose:         viper.GetBool("verbose"),
	}
}
