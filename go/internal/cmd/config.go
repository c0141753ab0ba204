package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pairplay/pairplay/go/internal/models"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Games struct {
		DefaultQuestionCount int            `yaml:"default_question_count"`
		QuestionCounts       map[string]int `yaml:"question_counts"`
	} `yaml:"games"`
	Reminders struct {
		IdleWindowMinutes int   `yaml:"idle_window_minutes"`
		BatchSize         int32 `yaml:"batch_size"`
	} `yaml:"reminders"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

// defaultConfig is used when no config file is present
func defaultConfig() *Config {
	var config Config
	config.applyDefaults()
	return &config
}

func (c *Config) applyDefaults() {
	if c.Games.DefaultQuestionCount <= 0 {
		c.Games.DefaultQuestionCount = 8
	}
	if c.Reminders.IdleWindowMinutes <= 0 {
		c.Reminders.IdleWindowMinutes = 60 * 24
	}
	if c.Reminders.BatchSize <= 0 {
		c.Reminders.BatchSize = 50
	}
}

func (c *Config) questionCounts() map[models.GameType]int {
	counts := make(map[models.GameType]int, len(c.Games.QuestionCounts))
	for gameType, count := range c.Games.QuestionCounts {
		counts[models.GameType(gameType)] = count
	}
	return counts
}

func (c *Config) reminderWindow() time.Duration {
	return time.Duration(c.Reminders.IdleWindowMinutes) * time.Minute
}
