package config

import (
	"fmt"
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server  Server  `yaml:"server"`
	Auth    Auth    `yaml:"auth"`
	Captcha Captcha `yaml:"captcha"`
	Mail    Mail    `yaml:"mail"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	BaseURL       string `yaml:"baseUrl"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Auth struct {
	// IssuerBaseURL is the identity provider origin, e.g. https://tenant.auth0.com
	IssuerBaseURL string `yaml:"issuerBaseUrl"`
	ClientID      string `yaml:"clientId"`
	ClientSecret  string `yaml:"clientSecret"`
	RedirectURI   string `yaml:"redirectUri"`
	SessionSecret string `yaml:"sessionSecret"`
}

type Captcha struct {
	Sitekey string `yaml:"sitekey"`
	Secret  string `yaml:"secret"`
}

type Mail struct {
	Endpoint    string `yaml:"endpoint"`
	APIKey      string `yaml:"apiKey"`
	FromAddress string `yaml:"fromAddress"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}

	if config.Auth.SessionSecret == "" {
		return Config{}, fmt.Errorf("auth.sessionSecret must be set")
	}

	return config, nil
}
