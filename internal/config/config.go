// internal/config/config.go
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Firebase FirebaseConfig
	Database DatabaseConfig
	Journal  JournalConfig
	App      AppConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

// StorageConfig selects the blob storage provider and the bucket it targets.
type StorageConfig struct {
	Provider        string // gcs, s3 or local
	Bucket          string
	CredentialsEnv  string // env var naming a key file
	CredentialsFile string // fallback key file path
	LocalRoot       string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3Region        string
	S3UseSSL        bool
}

type FirebaseConfig struct {
	ProjectID string
}

type DatabaseConfig struct {
	URL string
}

type JournalConfig struct {
	Backend         string // none, postgres or redis
	RedisURL        string
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	RedisDB         int
	RedisTTLSeconds int
}

type AppConfig struct {
	LogLevel          string
	CorsFile          string
	CorsStrict        bool
	RecordsFile       string
	RecordsCollection string
	RecordsBackend    string // firestore or postgres
	RecordsIDField    string
	AssetsDir         string
	AssetsPrefix      string
	AssetsDriveFolder string
	UploadConcurrency int
}

// Load reads configuration from the environment (and a .env file when
// present). Each call returns a fresh Config; callers pass it down explicitly.
func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Mode:         v.GetString("SERVER_MODE"),
			ReadTimeout:  v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetInt("SERVER_WRITE_TIMEOUT"),
		},
		Storage: StorageConfig{
			Provider:        strings.ToLower(v.GetString("STORAGE_PROVIDER")),
			Bucket:          v.GetString("STORAGE_BUCKET"),
			CredentialsEnv:  v.GetString("STORAGE_CREDENTIALS_ENV"),
			CredentialsFile: v.GetString("STORAGE_CREDENTIALS_FILE"),
			LocalRoot:       v.GetString("STORAGE_LOCAL_ROOT"),
			S3Endpoint:      v.GetString("S3_ENDPOINT"),
			S3AccessKey:     v.GetString("S3_ACCESS_KEY"),
			S3SecretKey:     v.GetString("S3_SECRET_KEY"),
			S3Region:        v.GetString("S3_REGION"),
			S3UseSSL:        v.GetBool("S3_USE_SSL"),
		},
		Firebase: FirebaseConfig{
			ProjectID: v.GetString("FIREBASE_PROJECT_ID"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("DATABASE_URL"),
		},
		Journal: JournalConfig{
			Backend:         strings.ToLower(v.GetString("JOURNAL_BACKEND")),
			RedisURL:        v.GetString("REDIS_URL"),
			RedisHost:       v.GetString("REDIS_HOST"),
			RedisPort:       v.GetString("REDIS_PORT"),
			RedisPassword:   v.GetString("REDIS_PASSWORD"),
			RedisDB:         v.GetInt("REDIS_DB"),
			RedisTTLSeconds: v.GetInt("JOURNAL_TTL_SECONDS"),
		},
		App: AppConfig{
			LogLevel:          v.GetString("LOG_LEVEL"),
			CorsFile:          v.GetString("CORS_FILE"),
			CorsStrict:        v.GetBool("CORS_STRICT"),
			RecordsFile:       v.GetString("RECORDS_FILE"),
			RecordsCollection: v.GetString("RECORDS_COLLECTION"),
			RecordsBackend:    strings.ToLower(v.GetString("RECORDS_BACKEND")),
			RecordsIDField:    v.GetString("RECORDS_ID_FIELD"),
			AssetsDir:         v.GetString("ASSETS_DIR"),
			AssetsPrefix:      v.GetString("ASSETS_PREFIX"),
			AssetsDriveFolder: v.GetString("ASSETS_DRIVE_FOLDER_ID"),
			UploadConcurrency: v.GetInt("UPLOAD_CONCURRENCY"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	// Set default values
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	v.SetDefault("STORAGE_PROVIDER", "gcs")
	v.SetDefault("STORAGE_BUCKET", "")
	v.SetDefault("STORAGE_CREDENTIALS_ENV", "GOOGLE_APPLICATION_CREDENTIALS")
	v.SetDefault("STORAGE_CREDENTIALS_FILE", "./serviceAccountKey.json")
	v.SetDefault("STORAGE_LOCAL_ROOT", "./data/buckets")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JOURNAL_BACKEND", "none")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JOURNAL_TTL_SECONDS", 7*24*3600)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_FILE", "cors.json")
	v.SetDefault("CORS_STRICT", false)
	v.SetDefault("RECORDS_FILE", "./data/records.json")
	v.SetDefault("RECORDS_COLLECTION", "businesses")
	v.SetDefault("RECORDS_BACKEND", "firestore")
	v.SetDefault("RECORDS_ID_FIELD", "id")
	v.SetDefault("ASSETS_DIR", "./data/assets")
	v.SetDefault("ASSETS_PREFIX", "assets")
	v.SetDefault("ASSETS_DRIVE_FOLDER_ID", "")
	v.SetDefault("UPLOAD_CONCURRENCY", 4)
}
