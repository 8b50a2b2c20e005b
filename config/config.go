package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OSS       OSSConfig       `mapstructure:"oss"`
	Email     EmailConfig     `mapstructure:"email"`
	Queue     QueueConfig     `mapstructure:"queue"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Wallet    WalletConfig    `mapstructure:"wallet"`
	Gifts     []GiftConfig    `mapstructure:"gifts"`
	TopUp     TopUpConfig     `mapstructure:"topup"`
	Spotlight SpotlightConfig `mapstructure:"spotlight"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type QueueConfig struct {
	ViewQueue  string `mapstructure:"view_queue"`
	MaxWorkers int    `mapstructure:"max_workers"`
	MaxRetries int    `mapstructure:"max_retries"` // 单条消息处理失败的回队上限
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// WalletConfig 积分钱包配置
type WalletConfig struct {
	SignupBonus     float64 `mapstructure:"signup_bonus"`      // 注册赠送积分
	DefaultViewRate float64 `mapstructure:"default_view_rate"` // 默认浏览分成（积分/次）
	MinWithdraw     float64 `mapstructure:"min_withdraw"`      // 最低提现积分
	WithdrawFee     float64 `mapstructure:"withdraw_fee"`      // 提现手续费（法币）
	ExchangeRate    float64 `mapstructure:"exchange_rate"`     // 积分兑换法币汇率
	MaxRetries      int     `mapstructure:"max_retries"`       // 余额更新冲突重试次数
}

type GiftConfig struct {
	Name  string  `mapstructure:"name"`
	Icon  string  `mapstructure:"icon"`
	Price float64 `mapstructure:"price"`
}

type TopUpConfig struct {
	Packages []TopUpPackage `mapstructure:"packages"`
}

type TopUpPackage struct {
	ID     string  `mapstructure:"id"`
	Name   string  `mapstructure:"name"`
	Points float64 `mapstructure:"points"`
	Price  float64 `mapstructure:"price"`
	Bonus  string  `mapstructure:"bonus"`
}

type SpotlightConfig struct {
	Plans []SpotlightPlan `mapstructure:"plans"`
}

type SpotlightPlan struct {
	DurationDays int     `mapstructure:"duration_days"`
	Cost         float64 `mapstructure:"cost"`
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	// 检查 config.local.yaml 是否存在
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Wallet.SignupBonus == 0 {
		cfg.Wallet.SignupBonus = 1000
	}
	if cfg.Wallet.DefaultViewRate == 0 {
		cfg.Wallet.DefaultViewRate = 0.0001
	}
	if cfg.Wallet.MinWithdraw == 0 {
		cfg.Wallet.MinWithdraw = 5000
	}
	if cfg.Wallet.WithdrawFee == 0 {
		cfg.Wallet.WithdrawFee = 6500
	}
	if cfg.Wallet.ExchangeRate == 0 {
		cfg.Wallet.ExchangeRate = 10
	}
	if cfg.Wallet.MaxRetries == 0 {
		cfg.Wallet.MaxRetries = 3
	}
	if cfg.Queue.ViewQueue == "" {
		cfg.Queue.ViewQueue = "view_events"
	}
	if cfg.Queue.MaxWorkers == 0 {
		cfg.Queue.MaxWorkers = 4
	}
	if len(cfg.Gifts) == 0 {
		cfg.Gifts = []GiftConfig{
			{Name: "Bronze", Icon: "🥉", Price: 10},
			{Name: "Silver", Icon: "🥈", Price: 50},
			{Name: "Gold", Icon: "🥇", Price: 200},
			{Name: "Platinum", Icon: "💎", Price: 1000},
		}
	}
	if len(cfg.TopUp.Packages) == 0 {
		cfg.TopUp.Packages = []TopUpPackage{
			{ID: "p1", Name: "Starter", Points: 1000, Price: 10000},
			{ID: "p2", Name: "Popular", Points: 5500, Price: 50000, Bonus: "+10%"},
			{ID: "p3", Name: "Pro", Points: 12000, Price: 100000, Bonus: "+20%"},
			{ID: "p4", Name: "VIP", Points: 32500, Price: 250000, Bonus: "+30%"},
		}
	}
	if len(cfg.Spotlight.Plans) == 0 {
		cfg.Spotlight.Plans = []SpotlightPlan{
			{DurationDays: 1, Cost: 200},
			{DurationDays: 3, Cost: 400},
		}
	}
}
