package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	HomeAssistant HomeAssistantConfig `mapstructure:"home_assistant"`
	WebSocket     WebSocketConfig     `mapstructure:"websocket"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Panel         PanelConfig         `mapstructure:"panel"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MigrationsPath string `mapstructure:"migrations_path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type HomeAssistantConfig struct {
	URL              string `mapstructure:"url"`
	Token            string `mapstructure:"token"`
	ReconnectDelay   string `mapstructure:"reconnect_delay"`
	FullSyncInterval string `mapstructure:"full_sync_interval"`
}

type WebSocketConfig struct {
	PingInterval int `mapstructure:"ping_interval"`
	PongTimeout  int `mapstructure:"pong_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PanelConfig holds the dashboard-facing tunables
type PanelConfig struct {
	// Update-suppression windows after user-initiated service calls, in ms
	SliderSuppressionMs int `mapstructure:"slider_suppression_ms"`
	VolumeSuppressionMs int `mapstructure:"volume_suppression_ms"`

	// Minimum interval between manual refreshes, in ms
	MinRefreshIntervalMs int `mapstructure:"min_refresh_interval_ms"`

	// Cooldown applied after a suggestion's action was taken
	ActionCooldown string `mapstructure:"action_cooldown"`

	// Cron spec for the periodic suggestion re-evaluation broadcast
	SuggestionSchedule string `mapstructure:"suggestion_schedule"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()

	// Override specific values from env
	viper.BindEnv("home_assistant.url", "HOME_ASSISTANT_URL")
	viper.BindEnv("home_assistant.token", "HOME_ASSISTANT_TOKEN")
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; defaults plus env carry the service
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 3004)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.mode", "production")

	viper.SetDefault("database.path", "./data/dashview.db")
	viper.SetDefault("database.migrations_path", "./migrations")
	viper.SetDefault("database.max_connections", 10)

	viper.SetDefault("home_assistant.reconnect_delay", "5s")
	viper.SetDefault("home_assistant.full_sync_interval", "1h")

	viper.SetDefault("websocket.ping_interval", 54)
	viper.SetDefault("websocket.pong_timeout", 60)
	viper.SetDefault("websocket.write_timeout", 10)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("panel.slider_suppression_ms", 1000)
	viper.SetDefault("panel.volume_suppression_ms", 1500)
	viper.SetDefault("panel.min_refresh_interval_ms", 1000)
	viper.SetDefault("panel.action_cooldown", "30m")
	viper.SetDefault("panel.suggestion_schedule", "*/5 * * * *")
}
