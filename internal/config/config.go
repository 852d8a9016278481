package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
)

type Config struct {
	Env      string `yaml:"env" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"PixChatBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	OpenAI struct {
		ApiKey  string `yaml:"api_key" env-default:""`
		Model   string `yaml:"model" env-default:"gpt-4o-mini"`
		Persona string `yaml:"persona" env-default:""`
	} `yaml:"openai"`
	Payment struct {
		ApiKey             string `yaml:"api_key" env:"PAYMENT_API_KEY" env-default:""`
		BaseURL            string `yaml:"base_url" env-default:"https://api.pushinpay.com.br/api"`
		WebhookURL         string `yaml:"webhook_url" env-default:""`
		PrimaryAmountCents int64  `yaml:"primary_amount_cents" env-default:"990"`
		UpsellAmountCents  int64  `yaml:"upsell_amount_cents" env-default:"1590"`
		VerifyDelaySeconds int    `yaml:"verify_delay_seconds" env-default:"10"`
	} `yaml:"payment"`
	Geo struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		BaseURL string `yaml:"base_url" env-default:"http://ip-api.com/json"`
	} `yaml:"geo"`
	Funnel struct {
		MediaBaseURL string `yaml:"media_base_url" env-default:""`
		VipURL       string `yaml:"vip_url" env-default:""`
		VideoCallURL string `yaml:"video_call_url" env-default:""`
	} `yaml:"funnel"`
	Session struct {
		TTLMinutes int `yaml:"ttl_minutes" env-default:"60"`
	} `yaml:"session"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9100"`
		ApiKey string `yaml:"key" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
