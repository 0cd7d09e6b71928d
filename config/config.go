package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Cron       CronConfig
	Reminder   ReminderConfig
	Firebase   FirebaseConfig
	Cloudinary CloudinaryConfig
	Admin      AdminSeedConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Requests per RateWindow per client IP.
	RateLimit  int
	RateWindow time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// CronConfig guards the externally scheduled reminder endpoint.
type CronConfig struct {
	Secret string
}

// ReminderConfig holds look-ahead windows per domain and the optional in-process schedule.
type ReminderConfig struct {
	EventWindow     time.Duration
	TrainingWindow  time.Duration
	EquipmentWindow time.Duration
	PolicyWindow    time.Duration
	// Schedule is a cron spec such as "@hourly"; empty disables the in-process trigger.
	Schedule string
	// Location used when rendering dates into reminder messages.
	TimeZone string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type AdminSeedConfig struct {
	Email    string
	Password string
}

type LogConfig struct {
	Level string
}

// Load reads .env (if present) and builds the config from defaults overridden by the environment.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			RateLimit:    getInt("RATE_LIMIT", 120),
			RateWindow:   getDuration("RATE_WINDOW", time.Minute),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", "reserves:reserves@tcp(localhost:3306)/reservehub?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: getDuration("JWT_ACCESS_EXPIRY", 12*time.Hour),
			Issuer:       getEnv("JWT_ISSUER", "reservehub"),
		},
		Cron: CronConfig{
			Secret: os.Getenv("CRON_SECRET"),
		},
		Reminder: ReminderConfig{
			EventWindow:     getDuration("REMINDER_EVENT_WINDOW", 24*time.Hour),
			TrainingWindow:  getDuration("REMINDER_TRAINING_WINDOW", 48*time.Hour),
			EquipmentWindow: getDuration("REMINDER_EQUIPMENT_WINDOW", 24*time.Hour),
			PolicyWindow:    getDuration("REMINDER_POLICY_WINDOW", 48*time.Hour),
			Schedule:        os.Getenv("REMINDER_SCHEDULE"),
			TimeZone:        getEnv("REMINDER_TIMEZONE", "UTC"),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			Folder:    getEnv("CLOUDINARY_FOLDER", "reservehub"),
		},
		Admin: AdminSeedConfig{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
