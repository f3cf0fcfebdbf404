package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// WeightsConfig - веса ранжирования ленты
type WeightsConfig struct {
	Recency     float64 `yaml:"recency"`
	Popularity  float64 `yaml:"popularity"`
	Relevance   float64 `yaml:"relevance"`
	Interaction float64 `yaml:"interaction"`
	Similarity  float64 `yaml:"similarity"`
	Proximity   float64 `yaml:"proximity"`
	DecayRate   float64 `yaml:"decay_rate"`
}

type TTLConfig struct {
	HomeSeconds     int `yaml:"home_seconds"`
	TrendingSeconds int `yaml:"trending_seconds"`
	ExploreSeconds  int `yaml:"explore_seconds"`
}

// FeedConfig - настройки движка ленты
type FeedConfig struct {
	MaxLimit                int           `yaml:"max_limit"`
	DefaultLimit            int           `yaml:"default_limit"`
	CandidateMultiplier     int           `yaml:"candidate_multiplier"`
	CacheBackend            string        `yaml:"cache_backend"`
	BadgerPath              string        `yaml:"badger_path"`
	TTL                     TTLConfig     `yaml:"ttl"`
	TrendingWindowHours     int           `yaml:"trending_window_hours"`
	LikedSampleSize         int           `yaml:"liked_sample_size"`
	MutualLookupConcurrency int           `yaml:"mutual_lookup_concurrency"`
	CoalesceMisses          bool          `yaml:"coalesce_misses"`
	Weights                 WeightsConfig `yaml:"weights"`
}

type ConfigSchema struct {
	Databases struct {
		Master   DBConfig   `yaml:"master"`
		Replicas []DBConfig `yaml:"replicas"`
	} `yaml:"databases"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Backend  struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"backend"`
	Logs struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logs"`
	Feed FeedConfig `yaml:"feed"`
}

const (
	CacheBackendRedis  = "redis"
	CacheBackendBadger = "badger"
	CacheBackendNone   = "none"

	minHomeTTLSeconds = 60
	maxHomeTTLSeconds = 300
)

var AppConfig *ConfigSchema

// DefaultWeights - веса по умолчанию (0.5/0.3/0.2 и 0.4/0.3/0.3 для релевантности)
func DefaultWeights() WeightsConfig {
	return WeightsConfig{
		Recency:     0.5,
		Popularity:  0.3,
		Relevance:   0.2,
		Interaction: 0.4,
		Similarity:  0.3,
		Proximity:   0.3,
		DecayRate:   0.1,
	}
}

// DefaultFeedConfig возвращает настройки ленты с заполненными значениями по умолчанию
func DefaultFeedConfig() FeedConfig {
	var fc FeedConfig
	fc.ApplyDefaults()
	return fc
}

// ApplyDefaults заполняет незаданные поля
func (fc *FeedConfig) ApplyDefaults() {
	if fc.MaxLimit <= 0 {
		fc.MaxLimit = 100
	}
	if fc.DefaultLimit <= 0 {
		fc.DefaultLimit = 20
	}
	if fc.DefaultLimit > fc.MaxLimit {
		fc.DefaultLimit = fc.MaxLimit
	}
	if fc.CandidateMultiplier <= 0 {
		fc.CandidateMultiplier = 3
	}
	if fc.CacheBackend == "" {
		fc.CacheBackend = CacheBackendRedis
	}
	if fc.TTL.HomeSeconds <= 0 {
		fc.TTL.HomeSeconds = 120
	}
	if fc.TTL.HomeSeconds < minHomeTTLSeconds {
		fc.TTL.HomeSeconds = minHomeTTLSeconds
	}
	if fc.TTL.HomeSeconds > maxHomeTTLSeconds {
		fc.TTL.HomeSeconds = maxHomeTTLSeconds
	}
	if fc.TTL.TrendingSeconds <= 0 {
		fc.TTL.TrendingSeconds = 600
	}
	if fc.TTL.ExploreSeconds <= 0 {
		fc.TTL.ExploreSeconds = 60
	}
	if fc.TrendingWindowHours <= 0 {
		fc.TrendingWindowHours = 24
	}
	if fc.LikedSampleSize <= 0 {
		fc.LikedSampleSize = 50
	}
	if fc.MutualLookupConcurrency <= 0 {
		fc.MutualLookupConcurrency = 8
	}
	// Веса задаются целиком: частично заполненный блок дополняется дефолтами
	def := DefaultWeights()
	w := &fc.Weights
	if w.Recency == 0 && w.Popularity == 0 && w.Relevance == 0 {
		w.Recency, w.Popularity, w.Relevance = def.Recency, def.Popularity, def.Relevance
	}
	if w.Interaction == 0 && w.Similarity == 0 && w.Proximity == 0 {
		w.Interaction, w.Similarity, w.Proximity = def.Interaction, def.Similarity, def.Proximity
	}
	if w.DecayRate <= 0 {
		w.DecayRate = def.DecayRate
	}
}

func (c *ConfigSchema) applyDefaults() {
	if c.Backend.Port == 0 {
		c.Backend.Port = 8080
	}
	if c.Databases.Master.Port == 0 {
		c.Databases.Master.Port = 5432
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "feed_events"
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	c.Feed.ApplyDefaults()
}

func (c *ConfigSchema) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Databases.Master.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.RabbitMQ.URL = v
	}
	if v := os.Getenv("FEED_CACHE_BACKEND"); v != "" {
		c.Feed.CacheBackend = v
	}
	if v := os.Getenv("BACKEND_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Backend.Port = port
		}
	}
}

func LoadConfig(filePath string) (*ConfigSchema, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	conf := &ConfigSchema{}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, err
	}
	conf.applyEnv()
	conf.applyDefaults()
	AppConfig = conf
	return conf, nil
}
