package main

import (
	"PixChat/ai/gpt"
	"PixChat/bot"
	"PixChat/chat"
	"PixChat/chat/funnel"
	"PixChat/internal/config"
	"PixChat/internal/http-server/api"
	"PixChat/internal/lib/logger"
	"PixChat/internal/lib/sl"
	"PixChat/internal/service/geo"
	"PixChat/internal/service/payment"
	"PixChat/internal/session"
	"PixChat/internal/ws"
	"context"
	"flag"
	"log/slog"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Operator alert bot, mirrors warn+ records to the admin chat
	if conf.Telegram.Enabled {
		tgBot, err := bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", slog.String("error", err.Error()))
		} else {
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelWarn)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
		}
	}

	lg.Info("starting pixchat", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	paymentService := payment.NewPaymentService(conf, lg)
	lg.With(
		sl.Secret("payment_key", conf.Payment.ApiKey),
		slog.String("url", conf.Payment.BaseURL),
	).Info("payment service initialized")

	geoService := geo.NewGeoService(conf, lg)
	if geoService != nil {
		lg.With(
			slog.String("url", conf.Geo.BaseURL),
		).Info("geo service initialized")
	}

	persona := gpt.NewPersona(conf, lg)
	if persona != nil {
		lg.With(
			sl.Secret("openai_key", conf.OpenAI.ApiKey),
			slog.String("model", conf.OpenAI.Model),
		).Info("persona initialized")
	}

	// A typed nil persona must not reach the workflow as a non-nil interface.
	var replies funnel.ReplyService
	if persona != nil {
		replies = persona
	}

	engine := chat.NewEngine(lg)
	workflow := funnel.NewFunnelWorkflow(conf, paymentService, replies, chat.SleepPauser{}, lg)
	engine.RegisterWorkflow(workflow)

	hub := ws.NewHub(lg)
	go hub.Run()

	var cityResolver session.CityResolver
	if geoService != nil {
		cityResolver = geoService
	}
	manager := session.NewManager(conf, engine, hub, cityResolver, funnel.WorkflowID, lg)
	hub.SetHandler(manager)
	if persona != nil {
		manager.SetCloseListener(persona.Forget)
	}
	go manager.Run(context.Background())

	// *** blocking start with http server ***
	err := api.New(conf, lg, manager, hub)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
