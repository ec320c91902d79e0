package main

import (
	"flag"
	"io"
	"log"
	"log/slog"
	"os"

	"hacklab/platform/config"
	"hacklab/platform/db"
	"hacklab/www"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var opts struct {
	config string
	logger struct {
		level string
	}
}

func main() {
	// parse command line options
	flag.StringVar(&opts.config, "config", "./config/hacklab.conf", "Path to the configuration file")
	flag.StringVar(&opts.logger.level, "log-level", "debug", "Set the log level")
	flag.Parse()

	logLevel, ok := logLevels[opts.logger.level]
	if !ok {
		log.Fatalf("Invalid log level: %s", opts.logger.level)
	}
	var handler slog.Handler
	handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	conf := config.ConfigSettings{}
	if err := conf.SetConfig(opts.config); err != nil {
		log.Fatalln("Failed to load config:", err)
	}

	if conf.MiscSettings.LogFile != "" {
		logFile, err := os.OpenFile(conf.MiscSettings.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalln("Failed to open log file:", err)
		}
		defer logFile.Close()
		handler = slog.NewTextHandler(io.MultiWriter(os.Stdout, logFile), &slog.HandlerOptions{Level: logLevel})
		slog.SetDefault(slog.New(handler))
	}

	db.Connect(conf.RequiredSettings.DBConnectURL)

	hashed, err := bcrypt.GenerateFromPassword([]byte(conf.AuthSettings.AdminPassword), conf.AuthSettings.BcryptCost)
	if err != nil {
		log.Fatalln("Failed to hash admin password:", err)
	}
	if err := db.SeedAdmin(&conf, string(hashed)); err != nil {
		log.Fatalln("Failed to seed admin account:", err)
	}
	if err := db.SeedChallenges(&conf); err != nil {
		log.Fatalln("Failed to seed challenges:", err)
	}
	if err := db.SeedAds(&conf); err != nil {
		log.Fatalln("Failed to seed ads:", err)
	}

	var redisClient *redis.Client
	if conf.MiscSettings.RedisURL != "" {
		redisOpts, err := redis.ParseURL(conf.MiscSettings.RedisURL)
		if err != nil {
			log.Fatalln("Invalid redis url:", err)
		}
		redisClient = redis.NewClient(redisOpts)
	} else {
		slog.Warn("no redis url configured, rate limiting disabled")
	}

	// start web server
	router := www.Router{Config: &conf, Redis: redisClient}
	router.Start()
}
