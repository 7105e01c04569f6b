package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis   `yaml:"redis"`
	Session    Session `yaml:"session"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Session holds the per-room tunables.
type Session struct {
	GraceWindow  time.Duration `yaml:"grace-window" env:"SESSION_GRACE_WINDOW" env-default:"60s"`
	EmptyRoomTTL time.Duration `yaml:"empty-room-ttl" env:"SESSION_EMPTY_ROOM_TTL" env-default:"5m"`
	SnapshotTTL  time.Duration `yaml:"snapshot-ttl" env:"SESSION_SNAPSHOT_TTL" env-default:"1h"`
	InboxSize    int           `yaml:"inbox-size" env:"SESSION_INBOX_SIZE" env-default:"64"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
