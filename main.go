package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/MoinBasha-MD/Syncup-Backend-sub002/cache"
	"github.com/MoinBasha-MD/Syncup-Backend-sub002/external/places"
	"github.com/MoinBasha-MD/Syncup-Backend-sub002/schema"
	"github.com/MoinBasha-MD/Syncup-Backend-sub002/store"
)

func initLog() {
	logLevel, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(logLevel)
	}

	log.SetOutput(os.Stdout)

	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})
}

func loadConfig(file string) {
	// Config from file
	viper.SetConfigType("yaml")
	if file != "" {
		viper.SetConfigFile(file)
	}

	viper.AddConfigPath("/.config/")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		fmt.Println("No config file. Read config from env.")
		viper.AllowEmptyEnv(false)
	}

	// Config from env if possible
	viper.AutomaticEnv()
	viper.SetEnvPrefix("syncup")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func main() {
	var configFile string

	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.Parse()

	loadConfig(configFile)

	initLog()

	// Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              viper.GetString("sentry.dsn"),
		AttachStacktrace: true,
		Environment:      viper.GetString("sentry.environment"),
	}); err != nil {
		log.Error(err)
	}
	log.WithField("prefix", "init").Info("Initialized sentry")

	// initialise mongodb connections
	opts := options.Client().ApplyURI(viper.GetString("mongo.conn"))
	opts.SetMaxPoolSize(viper.GetUint64("mongo.pool"))
	mongoClient, err := mongo.NewClient(opts)
	if nil != err {
		log.Panicf("create mongo client with error: %s", err)
	}

	err = mongoClient.Connect(context.Background())
	if nil != err {
		log.Panicf("connect mongo database with error: %s", err)
	}

	dbName := viper.GetString("mongo.database")
	schema.NewMongoDBIndexer(viper.GetString("mongo.conn"), dbName).IndexAll()
	log.WithField("prefix", "init").Info("Initialized mongodb indexes")

	mongoStore := store.NewMongoStore(mongoClient, dbName)

	// Google Places provider adapter
	fetcher, err := places.New(viper.GetString("map.key"))
	if err != nil {
		log.Panicf("create places client with error: %s", err)
	}
	log.WithField("prefix", "init").Info("Initialized places client")

	scheduler := cache.NewRefreshScheduler(
		mongoStore,
		fetcher,
		viper.GetDuration("cache.refresh_interval"),
		viper.GetInt64("cache.refresh_batch"),
	)
	scheduler.Start()
	log.WithField("prefix", "init").Info("Started cache refresh scheduler")

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info("Service is preparing to shutdown")

	scheduler.Stop()
	mongoStore.Close()
	sentry.Flush(2 * time.Second)
}
