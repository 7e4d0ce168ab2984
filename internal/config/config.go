package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	Telegram struct {
		Token       string
		PollTimeout int   `mapstructure:"poll_timeout"`
		AdminChatID int64 `mapstructure:"admin_chat_id"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Planning struct {
		Source          string
		SpreadsheetID   string `mapstructure:"spreadsheet_id"`
		Range           string
		CredentialsFile string `mapstructure:"credentials_file"`
		WorkbookPath    string `mapstructure:"workbook_path"`
		Sheet           string
	} `mapstructure:"planning"`

	Quality struct {
		TargetRate float64  `mapstructure:"target_rate"`
		Verticals  []string `mapstructure:"verticals"`
	} `mapstructure:"quality"`

	Report struct {
		SendgridAPIKey string `mapstructure:"sendgrid_api_key"`
		From           string
		To             string
	} `mapstructure:"report"`
}

const (
	PlanningSheets = "sheets"
	PlanningXLSX   = "xlsx"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("telegram.poll_timeout", 30)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("planning.source", PlanningSheets)
	v.SetDefault("planning.range", "Project_WorkOrder!A:Z")
	v.SetDefault("quality.target_rate", 3.0)
	v.SetDefault("quality.verticals", []string{"IDE Autoworks", "IDE Commercial", "Subumi"})
}

// Load reads the YAML file at path. A .env file in the working directory is
// loaded first; APP_* variables override file values (APP_POSTGRES_DSN and so on).
func Load(path string) (Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.Planning.Source {
	case PlanningSheets:
		if c.Planning.SpreadsheetID == "" {
			return errors.New("planning.spreadsheet_id is required for the sheets source")
		}
	case PlanningXLSX:
		if c.Planning.WorkbookPath == "" {
			return errors.New("planning.workbook_path is required for the xlsx source")
		}
	default:
		return errors.New("planning.source must be sheets or xlsx")
	}
	if c.Quality.TargetRate < 0 {
		return errors.New("quality.target_rate must not be negative")
	}
	return nil
}
