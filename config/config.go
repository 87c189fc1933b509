package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LLMProvider defines the structure for LLM provider configuration.
type LLMProvider struct {
	APIKey  string // Name of the environment variable holding the API key (replaced with the key at load time)
	BaseURL string
}

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		DSN string // Data Source Name (e.g., "memory" or file path for SQLite)
	}
	Assessment struct {
		TimeLimitSeconds int `mapstructure:"time_limit_seconds"` // Total time budget for one assessment session
		PageSize         int `mapstructure:"page_size"`          // Questions shown per page
	}
	Redis struct {
		Addr     string // Empty disables the cross-process notifier bridge
		Password string
		Channel  string // Pub/sub channel for store-change events
	}
	InterpretationModel string                 `mapstructure:"interpretation_model"` // Model name used for clinical interpretation
	LLMProviders        map[string]LLMProvider `mapstructure:"llm_providers"`        // Map of provider key to provider config
	LLMModels           map[string]string      `mapstructure:"llm_models"`           // Map of model name to provider key
}

// AppConfig is the global configuration instance.
var AppConfig Config

// LoadConfig loads configuration from file and environment variables.
func LoadConfig() {
	viper.SetConfigName("config")    // Name of config file (without extension)
	viper.SetConfigType("yaml")      // REQUIRED if the config file does not have the extension in the name
	viper.AddConfigPath("./config")  // Path to look for the config file in
	viper.AddConfigPath(".")         // Optionally look for config in the working directory
	viper.AddConfigPath("../config") // For running from locations like tests

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.dsn", "memory")
	viper.SetDefault("assessment.time_limit_seconds", 360) // 6 minutes
	viper.SetDefault("assessment.page_size", 5)
	viper.SetDefault("redis.channel", "neurometric:events")
	// Set other critical defaults, especially if they might be missing from YAML

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("WARN: [Config] Configuration file (config.yaml) not found. Using environment variables and defaults.")
		} else {
			log.Fatalf("FATAL: [Config] Error reading configuration file: %v", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("FATAL: [Config] Failed to unmarshal configuration into AppConfig struct: %v", err)
	}

	// Environment variable overrides
	if port := os.Getenv("SERVER_PORT"); port != "" {
		AppConfig.Server.Port = port
		log.Printf("INFO: [Config] Server port overridden by environment variable SERVER_PORT: %s", port)
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		AppConfig.Redis.Addr = addr
		log.Printf("INFO: [Config] Redis address overridden by environment variable REDIS_ADDR: %s", addr)
	}

	// Load API keys for LLM providers from environment variables
	for providerKey, providerConfig := range AppConfig.LLMProviders {
		envVarNameForKey := providerConfig.APIKey // Assumes APIKey field stores the name of the environment variable
		if envValue := os.Getenv(envVarNameForKey); envValue != "" {
			updatedConfig := providerConfig
			updatedConfig.APIKey = envValue // Replace placeholder with actual key
			AppConfig.LLMProviders[providerKey] = updatedConfig
			log.Printf("INFO: [Config] Loaded API Key for provider '%s' from environment variable '%s'.", providerKey, envVarNameForKey)
		} else if providerConfig.APIKey != "" && !strings.HasSuffix(providerConfig.APIKey, "_KEY") {
			// This case means the APIKey field in YAML was likely a hardcoded key (not recommended)
			// and no corresponding environment variable was found to override it.
			log.Printf("WARN: [Config] API Key for provider '%s' is directly set in config.yaml and not overridden by env var '%s'. Consider using env vars for keys.", providerKey, envVarNameForKey)
		} else {
			log.Printf("WARN: [Config] API Key for provider '%s' (env var '%s') is not set and not provided directly in config.", providerKey, envVarNameForKey)
		}
	}

	// Correctly load LLMModels if viper.Unmarshal didn't populate map[string]string
	if len(AppConfig.LLMModels) == 0 && viper.IsSet("llm_models") {
		log.Println("INFO: [Config] LLMModels map is empty, attempting manual load from Viper.")
		AppConfig.LLMModels = viper.GetStringMapString("llm_models")
		if len(AppConfig.LLMModels) > 0 {
			log.Println("INFO: [Config] Successfully manually loaded LLMModels:", AppConfig.LLMModels)
		} else {
			log.Println("WARN: [Config] Failed to load llm_models from configuration.")
		}
	}

	// Handle special characters in model names (e.g., replacing "__" with ".")
	// This ensures consistency if model names in config use "__" for readability but actual API expects "."
	updatedLLMModels := make(map[string]string)
	for modelName, provider := range AppConfig.LLMModels {
		newModelName := strings.Replace(modelName, "__", ".", 1)
		updatedLLMModels[newModelName] = provider
	}
	AppConfig.LLMModels = updatedLLMModels
	AppConfig.InterpretationModel = strings.Replace(AppConfig.InterpretationModel, "__", ".", 1)

	log.Println("INFO: [Config] Configuration loading complete.")
}
