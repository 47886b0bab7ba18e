// Command fbw-bench runs the flight control computers on a fixed frame, feeds them
// from a scenario, a cockpit panel or a host simulator, and publishes their state
// to MQTT and an HTTP status page.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/fbw-supervisor/internal/bridge"
	"github.com/sweeney/fbw-supervisor/internal/config"
	"github.com/sweeney/fbw-supervisor/internal/fcs"
	"github.com/sweeney/fbw-supervisor/internal/gpio"
	"github.com/sweeney/fbw-supervisor/internal/lawmodel"
	"github.com/sweeney/fbw-supervisor/internal/mqtt"
	"github.com/sweeney/fbw-supervisor/internal/scenario"
	"github.com/sweeney/fbw-supervisor/internal/status"
	"github.com/sweeney/fbw-supervisor/internal/web"
)

// defaultHeadless is how long -print-state runs without a scenario.
const defaultHeadless = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	flag.DurationVar(&cfg.Frame, "frame", cfg.Frame, "Simulation frame period")
	flag.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "Panel debounce duration")
	flag.StringVar(&cfg.Broker, "broker", cfg.Broker, "MQTT broker address")
	flag.DurationVar(&cfg.Heartbeat, "heartbeat", cfg.Heartbeat, "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "HTTP status address (empty to disable)")
	flag.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "YAML scenario file")
	flag.StringVar(&cfg.GPIOChip, "gpio-chip", cfg.GPIOChip, "GPIO chip for the cockpit panel (empty to disable)")
	flag.IntVar(&cfg.BusEvery, "bus-every", cfg.BusEvery, "Publish bus frames every n frames (0 to disable)")
	flag.BoolVar(&cfg.HostInput, "host-input", cfg.HostInput, "Take inputs from a host simulator over MQTT")
	printState := flag.Bool("print-state", false, "Run the scenario headless, print computer state and exit")

	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, printState bool) error {
	lines := gpio.Lines(cfg.PanelPins)
	if err := checkPanelLines(gpio.Names(lines)); err != nil {
		return err
	}

	var sc *scenario.Scenario
	if cfg.Scenario != "" {
		var err error
		if sc, err = scenario.Load(cfg.Scenario); err != nil {
			return err
		}
	}

	if printState {
		return runHeadless(os.Stdout, sc, cfg.Frame)
	}

	opts := benchOptions{
		Frame:     cfg.Frame,
		Debounce:  cfg.Debounce,
		Heartbeat: cfg.Heartbeat,
		BusEvery:  cfg.BusEvery,
		Lines:     gpio.Names(lines),
		Scenario:  sc,
		Now:       time.Now,
	}

	if cfg.GPIOChip != "" {
		reader, err := gpio.NewRealReader(cfg.GPIOChip, lines)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer reader.Close()
		opts.Panel = reader
	}

	// Initialize MQTT
	publisher := mqtt.NewRealPublisher(cfg.Broker, cfg.ClientID)
	defer publisher.Close()
	opts.Publisher = publisher

	if cfg.HostInput {
		host := mqtt.NewHost(cfg.Broker, cfg.ClientID+"-host")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := host.Connect(ctx)
		cancel()
		if err != nil {
			return err
		}
		defer host.Close()
		opts.Host = host
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		FrameMs:     cfg.Frame.Milliseconds(),
		DebounceMs:  cfg.Debounce.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		BusEvery:    cfg.BusEvery,
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		Scenario:    cfg.Scenario,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	opts.Tracker = tracker

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: frame=%v debounce=%v broker=%s heartbeat=%v panel=%v scenario=%q host=%v",
		cfg.Frame, cfg.Debounce, cfg.Broker, cfg.Heartbeat, opts.Panel != nil, cfg.Scenario, cfg.HostInput)

	b := newBench(fcs.New(lawmodel.Proportional{}), opts)

	ticker := time.NewTicker(cfg.Frame)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(b, ticker.C, sigCh)
}

func runLoop(b *bench, tick <-chan time.Time, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: b.now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if b.tracker != nil {
				b.refreshMQTT()
				event.RawPayload = status.FormatStatusEvent(b.tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := b.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			b.tick(ctx)
		}
	}
}

// checkPanelLines rejects panel line names the dispatcher would drop.
func checkPanelLines(names []string) error {
	for _, n := range names {
		if !bridge.Known(n) {
			return fmt.Errorf("panel line %q: %w", n, bridge.ErrUnknownInput)
		}
	}
	return nil
}

// runHeadless steps the system as fast as possible through sc (or a nominal
// environment when sc is nil), then prints every computer's final state.
func runHeadless(w io.Writer, sc *scenario.Scenario, frame time.Duration) error {
	system := fcs.New(lawmodel.Proportional{})
	env := fcs.Nominal()
	d := bridge.NewDispatcher()

	end := defaultHeadless
	var player *scenario.Player
	if sc != nil {
		player = scenario.NewPlayer(sc, d)
		end = sc.End()
	}

	for system.Now() < end {
		if player != nil {
			if _, err := player.Advance(system.Now(), &env); err != nil {
				return fmt.Errorf("run scenario: %w", err)
			}
		}
		d.Apply(&env)
		for _, e := range system.Step(frame, env) {
			if e.Time > frame {
				log.Printf("event: %s", e)
			}
		}
	}

	fmt.Fprintf(w, "t=%v\n", system.Now())
	for _, sm := range system.Summaries() {
		fns := sm.Functions
		if fns == "" {
			fns = "-"
		}
		fmt.Fprintf(w, "%-5s power=%-3s healthy=%-3s pitch=%-6s lateral=%-6s functions=%s\n",
			sm.Computer, stateString(sm.Powered), stateString(sm.Healthy),
			sm.PitchLaw, sm.LateralLaw, fns)
	}
	return nil
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
