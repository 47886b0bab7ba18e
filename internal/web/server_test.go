package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/fbw-supervisor/internal/fcs"
	"github.com/sweeney/fbw-supervisor/internal/lawmodel"
	"github.com/sweeney/fbw-supervisor/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		FrameMs:     20,
		DebounceMs:  50,
		HeartbeatMs: 60000,
		BusEvery:    10,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

// runSystem steps a fresh system past its self-tests and records every frame.
func runSystem(tr *status.Tracker, env fcs.Environment) *fcs.System {
	s := fcs.New(lawmodel.Proportional{})
	const dt = 20 * time.Millisecond
	for elapsed := time.Duration(0); elapsed < 2*time.Second; elapsed += dt {
		events := s.Step(dt, env)
		tr.Update(s.Now(), s.Summaries(), events)
	}
	return s
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	runSystem(tr, fcs.Nominal())
	tr.SetMQTTConnected(true)

	resp, body := get(t, ts.URL+"/index.json")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.Unmarshal([]byte(body), &sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if len(sj.Status.Computers) != int(fcs.NumComputers) {
		t.Fatalf("computers: got %d, want %d", len(sj.Status.Computers), fcs.NumComputers)
	}
	elac2 := sj.Status.Computers[fcs.Elac2]
	if elac2.Computer != "ELAC2" || elac2.PitchLaw != "NORMAL" {
		t.Errorf("ELAC2: got %+v", elac2)
	}
	if len(elac2.Functions) != 1 || elac2.Functions[0] != "pitch" {
		t.Errorf("ELAC2 functions: got %v, want [pitch]", elac2.Functions)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Config.FrameMs != 20 {
		t.Errorf("Config.FrameMs: got %d, want 20", sj.Status.Config.FrameMs)
	}
	if sj.Status.Frames != 100 {
		t.Errorf("Frames: got %d, want 100", sj.Status.Frames)
	}
}

func TestJSONNotReadyBeforeFirstFrame(t *testing.T) {
	ts, _ := newTestServer(t)

	_, body := get(t, ts.URL+"/index.json")
	var sj status.StatusJSON
	if err := json.Unmarshal([]byte(body), &sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.Ready {
		t.Error("expected Ready=false before any frame")
	}
	if sj.Status.Computers == nil || len(sj.Status.Computers) != 0 {
		t.Errorf("computers: got %v, want empty list", sj.Status.Computers)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	_, body := get(t, ts.URL+"/index.json")
	var sj status.StatusJSON
	json.Unmarshal([]byte(body), &sj)

	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestComputerEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	env := fcs.Nominal()
	fcs.Set(&env.Unpowered, fcs.Sec3, true)
	runSystem(tr, env)

	resp, body := get(t, ts.URL+"/computers/sec3.json")
	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	var cs ComputerStatus
	if err := json.Unmarshal([]byte(body), &cs); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if cs.Computer != "SEC3" {
		t.Errorf("computer: got %q, want SEC3", cs.Computer)
	}
	if cs.Powered || cs.Healthy {
		t.Errorf("SEC3 unpowered: got powered=%v healthy=%v", cs.Powered, cs.Healthy)
	}
	if cs.Transitions == 0 {
		t.Error("expected the first frame to count as transitions")
	}
	if cs.SimTimeMs != 2000 {
		t.Errorf("sim time: got %d, want 2000", cs.SimTimeMs)
	}
}

func TestComputerEndpointErrors(t *testing.T) {
	ts, tr := newTestServer(t)

	if resp, _ := get(t, ts.URL+"/computers/elac1.json"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("before first frame: got %d, want 503", resp.StatusCode)
	}

	runSystem(tr, fcs.Nominal())
	if resp, _ := get(t, ts.URL+"/computers/elac9.json"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown computer: got %d, want 404", resp.StatusCode)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	env := fcs.Nominal()
	fcs.Set(&env.Faulted, fcs.Fac2, true)
	runSystem(tr, env)
	tr.SetPanel(map[string]bool{"capt_takeover": true}, true)
	tr.SetScenario("elac2 power loss", false)

	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
	for _, want := range []string{
		"ELAC1", "FCDC2", "NORMAL", "yaw_damper rudder_trim rudder_limiter",
		"/computers/sec1.json", "capt_takeover", "elac2 power loss", "running",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if strings.Contains(body, "READY") {
		t.Error("FAC2 faulted: page should not report READY")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts.URL+"/index.html")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "disabled") && !strings.Contains(body, "60000ms") {
		t.Error("expected heartbeat setting on page")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := get(t, ts.URL+"/nonexistent")
	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	env := fcs.Nominal()
	fcs.Set(&env.Unpowered, fcs.Elac2, true)
	runSystem(tr, env)
	tr.SetPanel(map[string]bool{"fo_takeover": true}, true)

	resp, body := get(t, ts.URL+"/metrics")
	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	for _, want := range []string{
		`fbw_computer_healthy{computer="ELAC1"} 1`,
		`fbw_computer_healthy{computer="ELAC2"} 0`,
		`fbw_computer_powered{computer="ELAC2"} 0`,
		`fbw_computer_pitch_law_info{computer="ELAC1",law="NORMAL"} 1`,
		`fbw_computer_engaged_functions{computer="ELAC1"} 2`,
		`fbw_frames_total 100`,
		`fbw_sim_time_seconds 2`,
		`fbw_mqtt_connected 0`,
		`fbw_panel_line{line="fo_takeover"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)
	s := runSystem(tr, fcs.Nominal())

	env := fcs.Nominal()
	fcs.Set(&env.Unpowered, fcs.Elac2, true)
	for i := 0; i < 10; i++ {
		events := s.Step(20*time.Millisecond, env)
		tr.Update(s.Now(), s.Summaries(), events)
	}

	_, body := get(t, ts.URL+"/index.json")
	var sj status.StatusJSON
	json.Unmarshal([]byte(body), &sj)

	if sj.Status.Ready {
		t.Error("expected Ready=false with ELAC2 unpowered")
	}
	elac1 := sj.Status.Computers[fcs.Elac1]
	if strings.Join(elac1.Functions, ",") != "pitch,roll" {
		t.Errorf("ELAC1 functions: got %v, want [pitch roll]", elac1.Functions)
	}
}
