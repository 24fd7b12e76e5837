package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vocdoni/ballotbox/api"
	"github.com/vocdoni/ballotbox/db"
	"github.com/vocdoni/ballotbox/election"
	"github.com/vocdoni/ballotbox/feed"
	"github.com/vocdoni/ballotbox/notifications"
	"github.com/vocdoni/ballotbox/notifications/mailtemplates"
	"github.com/vocdoni/ballotbox/notifications/smtp"
	"github.com/vocdoni/ballotbox/notifications/twilio"
	"go.vocdoni.io/dvote/log"
)

func main() {
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 8080, "listen port")
	flag.StringP("secret", "s", "", "API secret")
	flag.StringP("admin", "a", "", "administrator identity address (required on first run)")
	flag.String("mongo-url", "", "The URL of the MongoDB server, leave empty to use BoltDB")
	flag.String("mongo-db", "ballotbox", "The name of the MongoDB database")
	flag.String("data-dir", "./ballotbox-data", "directory for the BoltDB storage")
	flag.String("webhook-url", "", "URL where committed events are posted, leave empty to disable")
	flag.String("alert-email-to", "", "recipient of lifecycle alert emails")
	flag.String("alert-sms-to", "", "recipient of lifecycle alert SMS")
	flag.String("smtp-from-name", "Ballotbox", "name of the email sender")
	flag.String("smtp-from-address", "", "email address of the sender")
	flag.String("smtp-username", "", "SMTP server username")
	flag.String("smtp-password", "", "SMTP server password")
	flag.String("smtp-server", "", "SMTP server address")
	flag.Int("smtp-port", 587, "SMTP server port")
	flag.String("twilio-account-sid", "", "Twilio account SID")
	flag.String("twilio-auth-token", "", "Twilio auth token")
	flag.String("twilio-from-number", "", "Twilio sender number")
	flag.String("log-level", "info", "log level (debug, info, warn, error)")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix("BALLOTBOX")
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	// read the configuration
	host := viper.GetString("host")
	port := viper.GetInt("port")
	secret := viper.GetString("secret")
	adminHex := viper.GetString("admin")
	mongoURL := viper.GetString("mongo-url")
	mongoDB := viper.GetString("mongo-db")
	dataDir := viper.GetString("data-dir")
	webhookURL := viper.GetString("webhook-url")
	alertEmailTo := viper.GetString("alert-email-to")
	alertSMSTo := viper.GetString("alert-sms-to")
	logLevel := viper.GetString("log-level")

	log.Init(logLevel, "stdout", nil)
	if secret == "" {
		log.Fatalf("secret is required")
	}
	if adminHex != "" && !common.IsHexAddress(adminHex) {
		log.Fatalf("admin is not a valid identity address: %s", adminHex)
	}

	// initialize the storage, MongoDB when configured and BoltDB otherwise
	var store db.Store
	if mongoURL != "" {
		mongoStore, err := db.NewMongo(mongoURL, mongoDB)
		if err != nil {
			log.Fatalf("could not connect to the MongoDB database: %v", err)
		}
		store = mongoStore
	} else {
		if err := os.MkdirAll(dataDir, 0o750); err != nil {
			log.Fatalf("could not create the data directory: %v", err)
		}
		boltStore, err := db.NewBolt(filepath.Join(dataDir, "ballotbox.db"))
		if err != nil {
			log.Fatalf("could not open the BoltDB database: %v", err)
		}
		store = boltStore
	}
	defer store.Close()

	// load the mail templates used by the lifecycle alerts
	if err := mailtemplates.Load(); err != nil {
		log.Fatalf("could not load the mail templates: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// assemble the event sinks: always log, optionally post to a webhook
	// and send lifecycle alerts
	sinks := []election.EventSink{feed.LogSink{}}
	var dispatcher *feed.Dispatcher
	if webhookURL != "" {
		dispatcher = feed.NewDispatcher(ctx, webhookURL, 0, 0)
		sinks = append(sinks, dispatcher)
	}
	var alerter *feed.Alerter
	mailService := mailServiceFromConfig()
	smsService := smsServiceFromConfig()
	if (mailService != nil && alertEmailTo != "") || (smsService != nil && alertSMSTo != "") {
		alerter = feed.NewAlerter(ctx, mailService, alertEmailTo, smsService, alertSMSTo)
		sinks = append(sinks, alerter)
	}

	// build or restore the election from the last persisted snapshot
	elec, err := buildElection(store, adminHex, feed.NewMulti(sinks...))
	if err != nil {
		log.Fatalf("could not initialize the election: %v", err)
	}

	// start the delivery loops
	if dispatcher != nil {
		go dispatcher.Start()
		go func() {
			for delivery := range dispatcher.Delivered {
				if delivery.Failed {
					log.Warnw("webhook delivery dropped",
						"id", delivery.ID,
						"seq", delivery.Event.Seq,
						"retries", delivery.Retries)
				}
			}
		}()
	}
	if alerter != nil {
		alerter.Bind(elec)
		go alerter.Start()
	}

	// create the local API server
	api.New(&api.Config{
		Host:     host,
		Port:     port,
		Secret:   secret,
		Election: elec,
		Store:    store,
	}).Start()
	// wait forever, as the server is running in a goroutine
	log.Infow("server started", "host", host, "port", port, "admin", elec.Administrator().Hex())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}

// buildElection restores the election from the last persisted snapshot, or
// creates a fresh one when the store is empty. On a fresh store the admin
// address is required; on a restored one it only needs to match when given.
// The event sequence resumes from the journal head when it is ahead of the
// snapshot, so restored runs never reuse sequence numbers.
func buildElection(store db.Store, adminHex string, sink election.EventSink) (*election.Election, error) {
	cfg := election.Config{
		Sink:      sink,
		Persister: store,
	}
	snap, err := store.Snapshot()
	switch {
	case err == db.ErrNotFound:
		if adminHex == "" {
			log.Fatalf("admin is required on the first run")
		}
		cfg.Admin = common.HexToAddress(adminHex)
		log.Infow("creating a fresh election", "admin", cfg.Admin.Hex())
		return election.New(cfg)
	case err != nil:
		return nil, err
	}
	if adminHex != "" && common.HexToAddress(adminHex) != snap.Admin {
		log.Fatalf("admin %s does not match the stored election administrator %s",
			adminHex, snap.Admin.Hex())
	}
	lastSeq, err := store.LastEventSeq()
	if err != nil {
		return nil, err
	}
	if lastSeq > snap.EventSeq {
		snap.EventSeq = lastSeq
	}
	log.Infow("restoring the election",
		"admin", snap.Admin.Hex(),
		"epoch", snap.Epoch,
		"active", snap.Active,
		"eventSeq", snap.EventSeq)
	return election.Restore(cfg, snap)
}

// mailServiceFromConfig builds the SMTP notification service, or returns nil
// when no SMTP server is configured.
func mailServiceFromConfig() notifications.NotificationService {
	if viper.GetString("smtp-server") == "" || viper.GetString("smtp-from-address") == "" {
		return nil
	}
	mail := new(smtp.Email)
	if err := mail.New(&smtp.Config{
		FromName:     viper.GetString("smtp-from-name"),
		FromAddress:  viper.GetString("smtp-from-address"),
		SMTPUsername: viper.GetString("smtp-username"),
		SMTPPassword: viper.GetString("smtp-password"),
		SMTPServer:   viper.GetString("smtp-server"),
		SMTPPort:     viper.GetInt("smtp-port"),
	}); err != nil {
		log.Fatalf("could not create the email service: %v", err)
	}
	return mail
}

// smsServiceFromConfig builds the Twilio notification service, or returns
// nil when no Twilio account is configured.
func smsServiceFromConfig() notifications.NotificationService {
	if viper.GetString("twilio-account-sid") == "" {
		return nil
	}
	sms := new(twilio.SMS)
	if err := sms.New(&twilio.Config{
		AccountSid: viper.GetString("twilio-account-sid"),
		AuthToken:  viper.GetString("twilio-auth-token"),
		FromNumber: viper.GetString("twilio-from-number"),
	}); err != nil {
		log.Fatalf("could not create the SMS service: %v", err)
	}
	return sms
}
