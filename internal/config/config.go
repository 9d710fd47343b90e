package config

import "os"

// Config holds process-level settings read from the environment
type Config struct {
	MongoURI   string
	MongoDB    string
	RedisAddr  string
	HTTPPort   string
	MBABankPDF string // extracted text of the MBA question document
	BankPDF    string // extracted text of the banking question document
}

// Load reads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		MongoURI:   getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:    getEnv("MONGO_DB", "intervue"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:   getEnv("PORT", "8080"),
		MBABankPDF: getEnv("MBA_QUESTION_FILE", "MBA_Question.pdf"),
		BankPDF:    getEnv("BANK_QUESTION_FILE", "Bank_Question.pdf"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
