package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"gitlab.com/lologarithm/comfortnode/actuator"
	"gitlab.com/lologarithm/comfortnode/alert"
	"gitlab.com/lologarithm/comfortnode/clock"
	"gitlab.com/lologarithm/comfortnode/config"
	"gitlab.com/lologarithm/comfortnode/metrics"
	"gitlab.com/lologarithm/comfortnode/node"
	"gitlab.com/lologarithm/comfortnode/rnet"
	"gitlab.com/lologarithm/comfortnode/sensor"
	"gitlab.com/lologarithm/comfortnode/status"
	"gitlab.com/lologarithm/comfortnode/store"
)

func main() {
	cfgPath := flag.String("config", "comfortnode.yaml", "path to yaml config")
	fake := flag.Bool("fake", false, "use in-memory store and fake hardware")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	var zl *zap.Logger
	var err error
	if *debug {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer zl.Sync()
	log := zl.Sugar()

	load := config.Load
	if *fake {
		load = config.LoadOffline
	}
	cfg, err := load(*cfgPath)
	if err != nil {
		if !*fake || !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf("Failed to load config: %s", err)
		}
		cfg = config.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *fake, log); err != nil {
		log.Fatalf("%s", err)
	}
}

func run(ctx context.Context, cfg *config.Config, fake bool, log *zap.SugaredLogger) error {
	deps := node.Deps{}
	if fake {
		log.Infof("Running with fake hardware and in-memory store")
		deps.Store = seedCommands(cfg.Store.Actuators)
		deps.Sensor = &sensor.Fake{Temp: 22.5, Humi: 48}
		deps.Actuators = actuator.NewFake(log)
	} else {
		fb, err := store.NewFirebase(ctx, cfg.Store.FirebaseConfig)
		if err != nil {
			return err
		}
		deps.Store = fb

		pins, err := actuator.OpenRPIO(cfg.Pins.Pins, log)
		if err != nil {
			return err
		}
		defer pins.Close()
		deps.Actuators = pins
		deps.Sensor = sensor.NewDHT22(cfg.Pins.DHT)
	}

	ntp, err := clock.NewNTP(cfg.Clock, log)
	if err != nil {
		return err
	}
	if err := ntp.Sync(); err != nil {
		log.Warnf("Initial clock sync failed, stamping %q until it succeeds: %s", clock.Unsynced, err)
	}
	go ntp.Run(ctx)
	deps.Clock = ntp

	n := node.New(cfg.Node(), deps, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := metrics.NewProm(reg)
	n.Record(prom)
	n.Listen(prom)

	hub := status.NewHub(cfg.Name, log)
	go hub.Run(ctx)
	n.Listen(hub)

	if cfg.Broadcast.Enabled {
		if ips, err := rnet.MyIPs(); err == nil {
			log.Infof("Local addresses: %v", ips)
		}
		b, err := rnet.NewBroadcaster(cfg.Broadcast.Addr, log)
		if err != nil {
			return err
		}
		defer b.Close()
		n.Listen(b)
	}

	if cfg.Mailgun.Enabled() {
		n.Listen(alert.NewWatcher(cfg.Name, alert.NewMailer(cfg.Mailgun), log))
	}

	if cfg.HTTP.Addr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/", hub.ServePage)
		mux.HandleFunc("/stream", hub.ServeStream)
		mux.Handle("/metrics", metrics.Handler(reg))
		srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: mux}
		go func() {
			log.Infof("Serving status on %s", cfg.HTTP.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("[Error] status server: %s", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	return n.Run(ctx)
}

// seedCommands returns a memory store holding a sample command under prefix.
func seedCommands(prefix string) *store.Memory {
	mem := store.NewMemory()
	mem.Put(store.Join(prefix, node.KeyPower), true)
	mem.Put(store.Join(prefix, node.KeyRed), 128)
	mem.Put(store.Join(prefix, node.KeyGreen), 0)
	mem.Put(store.Join(prefix, node.KeyBlue), 255)
	return mem
}
