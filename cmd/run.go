package cmd

import (
	"context"
	"net/http"
	_ "net/http/pprof" // pprof handler
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andig/vinfast/api"
	"github.com/andig/vinfast/core"
	"github.com/andig/vinfast/core/storage"
	"github.com/andig/vinfast/server"
	"github.com/andig/vinfast/server/public"
	"github.com/andig/vinfast/util"
	"github.com/andig/vinfast/vehicle"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCmd starts the poll loop and api server
var runCmd = &cobra.Command{
	Use:              "run",
	Short:            "Start the poll loop and api server",
	PersistentPreRun: persistentConfig,
	PreRun:           runConfig,
	Run:              runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runConfig(cmd *cobra.Command, args []string) {
	cmd.PersistentFlags().StringP(
		"uri", "u",
		"0.0.0.0:7070",
		"Listen address",
	)
	bind(cmd, "uri")

	cmd.PersistentFlags().DurationP(
		"interval", "i",
		5*time.Minute,
		"Poll interval",
	)
	bind(cmd, "interval")

	cmd.PersistentFlags().Bool(
		"metrics",
		false,
		"Expose metrics",
	)
	bind(cmd, "metrics")

	cmd.PersistentFlags().Bool(
		"profile",
		false,
		"Expose pprof profiles",
	)
	bind(cmd, "profile")
}

func runRun(cmd *cobra.Command, args []string) {
	util.LogLevel(viper.GetString("log"), viper.GetStringMapString("levels"))
	log.INFO.Printf("vinfast %s (%s)", server.Version, server.Commit)

	// load config and re-configure logging after reading config file
	conf, err := loadConfigFile(cfgFile)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	util.LogLevel(viper.GetString("log"), viper.GetStringMapString("levels"))

	uri := viper.GetString("uri")
	if conf.Interval == 0 {
		conf.Interval = viper.GetDuration("interval")
	}

	// setup vehicle
	v, err := vehicle.NewVinFastFromConfig(conf.Vehicle)
	if err != nil {
		log.FATAL.Fatal(err)
	}
	log.INFO.Println("vehicle:", v.VIN())

	coordinator := core.NewCoordinator(util.NewLogger("core"), v, core.Config{
		Interval:         conf.Interval,
		ChargeInterval:   conf.ChargeInterval,
		Budget:           conf.Budget,
		FailureThreshold: conf.Failures,
	})

	// start broadcasting values
	tee := &util.Tee{}

	// value cache
	cache := util.NewCache()
	go cache.Run(tee.Attach())

	// setup database
	if conf.Influx.URL != "" {
		influx := server.NewInfluxClient(conf.Influx, v.VIN())
		go influx.Run(tee.Attach())
	}

	// setup mqtt publisher
	if conf.Mqtt.Broker != "" {
		publisher, err := server.NewMQTT(conf.Mqtt)
		if err != nil {
			log.FATAL.Fatal(err)
		}
		go publisher.Run(tee.Attach())
	}

	// setup snapshot history
	var store *storage.Store
	if conf.Database.Path != "" {
		if store, err = storage.Open(conf.Database.Path); err != nil {
			log.FATAL.Fatal(err)
		}

		coordinator.Subscribe(func(u api.Update) {
			if u.Ok {
				if err := store.Persist(u.Snapshot); err != nil {
					log.ERROR.Printf("persist snapshot: %v", err)
				}
			}
		})
	}

	// announce the api endpoint
	if _, err := public.SetListener(uri); err != nil {
		log.FATAL.Fatal(err)
	}
	log.INFO.Println("listening at", public.Addr)

	// create webserver
	httpd := server.NewHTTPd(util.NewLogger("http"), uri, coordinator, cache, store)

	// metrics
	if viper.GetBool("metrics") {
		httpd.Router().Handle("/metrics", promhttp.Handler())
	}

	// pprof
	if viper.GetBool("profile") {
		httpd.Router().PathPrefix("/debug/").Handler(http.DefaultServeMux)
	}

	// setup values channel
	valueChan := make(chan util.Param)
	go tee.Run(valueChan)
	coordinator.Pipe(valueChan)

	// poll loop
	ctx, cancel := context.WithCancel(context.Background())
	exitC := make(chan struct{})

	go func() {
		coordinator.Run(ctx)
		close(exitC)
	}()

	// catch signals
	go func() {
		signalC := make(chan os.Signal, 1)
		signal.Notify(signalC, os.Interrupt, syscall.SIGTERM)

		<-signalC // wait for signal
		cancel()  // signal loop to end

		select {
		case <-exitC: // wait for loop to end
		case <-time.NewTimer(10 * time.Second).C:
		}

		os.Exit(1)
	}()

	log.FATAL.Println(httpd.ListenAndServe())
}
