package config

import (
	"errors"
	"os"
)

type Config struct {
	Port        string
	DatabaseDSN string
	Env         string
	RoomName    string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// Load 从环境变量读取配置，未设置的项使用默认值。
// DATABASE_DSN 为空时 db.Connect 会使用内存 SQLite，方便本地跑通。
func Load() Config {
	return Config{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseDSN: getenv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=memberchat port=5432 sslmode=disable TimeZone=UTC"),
		Env:         getenv("APP_ENV", "dev"),
		RoomName:    getenv("CHAT_ROOM_NAME", "Global chat"),
	}
}

// Validate 检查配置是否满足启动条件。
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("port must not be empty")
	}
	if cfg.RoomName == "" {
		return errors.New("room name must not be empty")
	}
	return nil
}
