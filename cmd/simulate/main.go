// Command simulate drives the anomaly engine with synthetic vessel tracks
// and prints what it alerts on. Useful for demos and threshold tuning.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marpol/driftwatch/internal/app"
	"github.com/marpol/driftwatch/internal/simulator"
	"github.com/marpol/driftwatch/pkg/logger"
)

const (
	defaultTrackLen = 6
	drainWait       = 500 * time.Millisecond
)

func main() {
	scenarioFlag := flag.String("scenario", "all", "scenario to run: cruise, sudden_stop, hard_turn, drift, or all")
	trackLen := flag.Int("reports", defaultTrackLen, "reports per track")
	cooldown := flag.Duration("cooldown", 10*time.Minute, "alert cooldown window")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString("warn") // alerts log at warn; keep the rest quiet

	scenarios, err := pickScenarios(*scenarioFlag)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	ctx := context.Background()
	svc := app.New(
		app.WithFeed(false, "", ""),
		app.WithCooldown(*cooldown),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start engine: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer svc.Stop()

	gen := simulator.NewGenerator()
	for _, s := range scenarios {
		mmsi := "sim-" + uuid.NewString()[:8]
		fmt.Printf("--- scenario %s (vessel %s)\n", s, mmsi)
		for _, report := range gen.Track(s, *trackLen) {
			if !svc.Ingest(ctx, mmsi, report) {
				fmt.Println("report dropped")
			}
		}
	}

	// Let the worker drain before reading results.
	time.Sleep(drainWait)

	for _, a := range svc.RecentAlerts(0) {
		fmt.Printf("ALERT %-8s vessel=%s score=%d reason=%q map=%s\n",
			a.DangerLevel, a.VesselID, a.DangerScore, a.Reason, a.Location.GoogleMaps)
	}
	stats := svc.GetStats()
	fmt.Printf("vessels=%v emitted=%v suppressed=%v\n",
		stats["vesselsTracked"], stats["alertsEmitted"], stats["alertsSuppressed"])
}

func pickScenarios(name string) ([]simulator.Scenario, error) {
	if name == "all" {
		return simulator.Scenarios(), nil
	}
	for _, s := range simulator.Scenarios() {
		if string(s) == name {
			return []simulator.Scenario{s}, nil
		}
	}
	known := make([]string, 0, len(simulator.Scenarios()))
	for _, s := range simulator.Scenarios() {
		known = append(known, string(s))
	}
	return nil, fmt.Errorf("unknown scenario %q (known: %s)", name, strings.Join(known, ", "))
}
