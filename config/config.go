package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     string
	StorageBackend string // "postgres" or "mongo"
	DatabaseDSN    string
	MongoURI       string
	MongoDBName    string
	AccessSecret   string
	AdminEmail     string
	AdminPassword  string
	BaseURL        string
	KafkaBroker    string
	KafkaTopic     string
	KafkaUsername  string
	KafkaPassword  string
}

func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: env file not found or could not be loaded:", err)
		}
	}

	return Config{
		ServerPort:     getEnv("SERVER_PORT", ":3000"),
		StorageBackend: getEnv("STORAGE_BACKEND", "postgres"),
		DatabaseDSN:    os.Getenv("DATABASE_DSN"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "apartments"),
		AccessSecret:   os.Getenv("ACCESS_SECRET"),
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		BaseURL:        getEnv("BASE_URL", "*"),
		KafkaBroker:    os.Getenv("KAFKA_BROKER"),
		KafkaTopic:     os.Getenv("KAFKA_TOPIC"),
		KafkaUsername:  os.Getenv("KAFKA_USERNAME"),
		KafkaPassword:  os.Getenv("KAFKA_PASSWORD"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
