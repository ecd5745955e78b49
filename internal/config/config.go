package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string `env:"ENV" env-default:"development"`
	Port     string `env:"PORT" env-default:"8080"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	JWTSecret string        `env:"JWT_SECRET" env-default:"change-me"`
	JWTTTL    time.Duration `env:"JWT_TTL" env-default:"24h"`

	Redis   Redis
	Subsidy Subsidy
	Games   Games

	JournalPath  string `env:"JOURNAL_PATH" env-default:"casino.db"`
	PaytablePath string `env:"PAYTABLE_PATH"`

	InitialBalance   int64 `env:"INITIAL_BALANCE" env-default:"1000"`
	SeedRotateEvery  int64 `env:"SEED_ROTATE_EVERY" env-default:"10000"`
	BetsPerMinute    int   `env:"BETS_PER_MINUTE" env-default:"120"`
	ActionsPerMinute int   `env:"ACTIONS_PER_MINUTE" env-default:"600"`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Subsidy tops a save up to Amount once its balance has stayed at or below
// Threshold for Delay.
type Subsidy struct {
	Threshold int64         `env:"SUBSIDY_THRESHOLD" env-default:"1"`
	Amount    int64         `env:"SUBSIDY_AMOUNT" env-default:"1000"`
	Delay     time.Duration `env:"SUBSIDY_DELAY" env-default:"3s"`
}

type Games struct {
	CrashTick      time.Duration `env:"CRASH_TICK" env-default:"50ms"`
	CoinPolicy     string        `env:"COIN_POLICY" env-default:"fair"`
	HiloStart      float64       `env:"HILO_START_MULTIPLIER" env-default:"1.00"`
	HiloStep       float64       `env:"HILO_STEP" env-default:"0.20"`
	QuotaStart     int64         `env:"QUOTA_START" env-default:"100"`
	QuotaSpins     int           `env:"QUOTA_SPINS_PER_CYCLE" env-default:"7"`
	QuotaGrowth    float64       `env:"QUOTA_GROWTH" env-default:"1.5"`
	BlackjackLevel string        `env:"BLACKJACK_DIFFICULTY" env-default:"medium"`
}

// Load reads the environment. Call godotenv first to pick up a .env file.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.InitialBalance <= 0 {
		errs = append(errs, errors.New("INITIAL_BALANCE must be positive"))
	}
	if c.Subsidy.Amount <= c.Subsidy.Threshold {
		errs = append(errs, errors.New("SUBSIDY_AMOUNT must exceed SUBSIDY_THRESHOLD"))
	}
	if c.Games.CrashTick <= 0 {
		errs = append(errs, errors.New("CRASH_TICK must be positive"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool { return c.Env == "production" }
