package main

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/fbw-supervisor/internal/bridge"
	"github.com/sweeney/fbw-supervisor/internal/fcs"
	"github.com/sweeney/fbw-supervisor/internal/gpio"
	"github.com/sweeney/fbw-supervisor/internal/logic"
	"github.com/sweeney/fbw-supervisor/internal/mqtt"
	"github.com/sweeney/fbw-supervisor/internal/scenario"
	"github.com/sweeney/fbw-supervisor/internal/status"
)

// bench owns everything the run loop touches. Only runLoop's goroutine uses it.
type bench struct {
	system     *fcs.System
	env        fcs.Environment
	dispatcher *bridge.Dispatcher
	detector   *logic.Detector

	// Optional parts; nil when disabled.
	panel    gpio.Reader
	lines    []string
	sc       *scenario.Scenario
	player   *scenario.Player
	host     bridge.Host
	tracker  *status.Tracker
	netInfo  func() *status.NetworkInfo
	mqttStat mqtt.ConnectionStatus

	publisher mqtt.Publisher
	frame     time.Duration
	busEvery  int
	heartbeat time.Duration
	now       func() time.Time

	frames       uint64
	panelSeeded  bool
	scenarioDone bool
}

// benchOptions lists what newBench needs beyond the system itself.
type benchOptions struct {
	Frame     time.Duration
	Debounce  time.Duration
	Heartbeat time.Duration
	BusEvery  int
	Panel     gpio.Reader
	Lines     []string
	Scenario  *scenario.Scenario
	Host      bridge.Host
	Publisher mqtt.Publisher
	Tracker   *status.Tracker
	Now       func() time.Time
}

func newBench(system *fcs.System, opts benchOptions) *bench {
	b := &bench{
		system:     system,
		env:        fcs.Nominal(),
		dispatcher: bridge.NewDispatcher(),
		panel:      opts.Panel,
		lines:      opts.Lines,
		sc:         opts.Scenario,
		host:       opts.Host,
		tracker:    opts.Tracker,
		netInfo:    readNetworkInfo,
		publisher:  opts.Publisher,
		frame:      opts.Frame,
		busEvery:   opts.BusEvery,
		heartbeat:  opts.Heartbeat,
		now:        opts.Now,
	}
	if cs, ok := opts.Publisher.(mqtt.ConnectionStatus); ok {
		b.mqttStat = cs
	}
	if b.panel == nil {
		b.lines = nil
	}
	b.detector = logic.NewDetector(b.lines, opts.Debounce, b.now())
	if b.sc != nil {
		b.player = scenario.NewPlayer(b.sc, b.dispatcher)
		if b.tracker != nil {
			b.tracker.SetScenario(b.sc.Name, false)
		}
	}
	return b
}

// tick runs one frame: inputs, scenario, simulation step, then outputs.
func (b *bench) tick(ctx context.Context) {
	t := b.now()

	b.readPanel(t)

	if b.player != nil {
		steps, err := b.player.Advance(b.system.Now(), &b.env)
		if err != nil {
			log.Printf("scenario: %v", err)
		}
		for _, st := range steps {
			log.Printf("scenario: %s at %v", st.Action, st.At)
		}
	}
	b.dispatcher.Apply(&b.env)

	events := b.system.Step(b.frame, b.env)
	b.frames++

	for _, e := range events {
		log.Printf("event: %s", e)
		if err := b.publisher.Publish(e); err != nil {
			log.Printf("publish error: %v", err)
		}
	}

	if b.busEvery > 0 && b.frames%uint64(b.busEvery) == 0 {
		for id, f := range b.system.Frames() {
			if err := b.publisher.PublishFrame(fcs.ID(id), f); err != nil {
				log.Printf("publish frame %s: %v", fcs.ID(id), err)
			}
		}
	}

	if b.host != nil {
		out := bridge.Output{Time: b.system.Now(), Frames: b.system.Frames()}
		if err := bridge.Sync(ctx, b.host, b.dispatcher, out); err != nil {
			log.Printf("host: %v", err)
		}
	}

	if b.tracker != nil {
		b.tracker.Update(b.system.Now(), b.system.Summaries(), events)
		b.refreshMQTT()
		if b.panel != nil {
			b.tracker.SetPanel(b.panelState(), b.detector.IsBaselined())
		}
	}

	b.checkScenarioDone()
	b.checkHeartbeat(t)
}

// readPanel samples the panel and forwards debounced transitions to the dispatcher.
// Nothing reaches the computers until every line has a baseline.
func (b *bench) readPanel(t time.Time) {
	var sample []bool
	if b.panel != nil {
		var err error
		sample, err = b.panel.Read()
		if err != nil {
			log.Printf("gpio read error: %v", err)
			return
		}
	}

	events := b.detector.Process(logic.Input{Lines: sample, Time: t})
	if !b.detector.IsBaselined() || len(b.lines) == 0 {
		return
	}

	if !b.panelSeeded {
		b.panelSeeded = true
		for i, on := range b.detector.Stable() {
			b.dispatch(b.lines[i], on)
		}
		log.Printf("panel: baselined %v", b.panelState())
		return
	}
	for _, e := range events {
		log.Printf("panel: %s %s", e.Line, e.State)
		b.dispatch(e.Line, e.State == logic.StateOn)
	}
}

func (b *bench) dispatch(line string, on bool) {
	v := 0.0
	if on {
		v = 1
	}
	if err := b.dispatcher.Dispatch(bridge.InputEvent{Name: line, Value: v}); err != nil {
		log.Printf("panel: %v", err)
	}
}

func (b *bench) panelState() map[string]bool {
	out := make(map[string]bool, len(b.lines))
	for i, on := range b.detector.Stable() {
		out[b.lines[i]] = on
	}
	return out
}

func (b *bench) refreshMQTT() {
	if b.tracker != nil && b.mqttStat != nil {
		b.tracker.SetMQTTConnected(b.mqttStat.IsConnected())
	}
}

func (b *bench) checkScenarioDone() {
	if b.player == nil || b.scenarioDone || !b.player.Done(b.system.Now()) {
		return
	}
	b.scenarioDone = true
	log.Printf("scenario %q done at %v", b.sc.Name, b.system.Now())

	ev := mqtt.SystemEvent{Timestamp: b.now(), Event: "SCENARIO_DONE", Reason: b.sc.Name}
	if b.tracker != nil {
		b.tracker.SetScenario(b.sc.Name, true)
		ev.RawPayload = status.FormatStatusEvent(b.tracker.Snapshot(), "SCENARIO_DONE", b.sc.Name)
	}
	if err := b.publisher.PublishSystem(ev); err != nil {
		log.Printf("scenario done publish error: %v", err)
	}
}

func (b *bench) checkHeartbeat(t time.Time) {
	hb := b.detector.CheckHeartbeat(t, b.heartbeat)
	if hb == nil {
		return
	}
	healthy := 0
	for _, sm := range b.system.Summaries() {
		if sm.Healthy {
			healthy++
		}
	}
	log.Printf("heartbeat: uptime=%v sim=%v frames=%d healthy=%d/%d",
		hb.Uptime.Truncate(time.Second), b.system.Now(), b.frames, healthy, fcs.NumComputers)

	ev := mqtt.SystemEvent{Timestamp: hb.Timestamp, Event: "HEARTBEAT"}
	if b.tracker != nil {
		b.refreshMQTT()
		if net := b.netInfo(); net != nil {
			b.tracker.SetNetwork(net)
		}
		ev.RawPayload = status.FormatStatusEvent(b.tracker.Snapshot(), "HEARTBEAT", "")
	}
	if err := b.publisher.PublishSystem(ev); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}
