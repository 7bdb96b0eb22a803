package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/edp1096/elecsim/pkg/netspec"
	"github.com/edp1096/elecsim/pkg/network"
	"github.com/edp1096/elecsim/pkg/solver"
	"github.com/edp1096/elecsim/pkg/util"
)

func main() {
	period := flag.Duration("period", 50*time.Millisecond, "tick period")
	timeFactor := flag.Float64("timefactor", 1.0, "simulation-to-wallclock time scale")
	runFor := flag.Duration("for", 5*time.Second, "how long to run before printing the final snapshot and exiting")
	dump := flag.Duration("dump", time.Second, "interval between tabular state dumps; 0 disables periodic dumps")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("Usage: elecsim [flags] <netspec_file>")
	}

	content, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Error reading netspec file: %v", err)
	}

	descriptors, err := netspec.Parse(strings.NewReader(string(content)))
	if err != nil {
		log.Fatalf("Error parsing netspec: %v", err)
	}

	net, err := network.Build(flag.Arg(0), descriptors)
	if err != nil {
		log.Fatalf("Error building network: %v", err)
	}

	drv := solver.New(net, solver.WithPeriod(*period), solver.WithTimeFactor(*timeFactor))
	if err := drv.Start(); err != nil {
		log.Fatalf("Error starting driver: %v", err)
	}

	stop := make(chan struct{})
	if *dump > 0 {
		go dumpLoop(net, *dump, stop)
	}

	time.Sleep(*runFor)
	close(stop)
	drv.Stop()

	if err := drv.Err(); err != nil {
		log.Fatalf("Solver stopped with error: %v", err)
	}

	printSnapshot(net)
}

func dumpLoop(net *network.Network, every time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			printSnapshot(net)
		}
	}
}

func printSnapshot(net *network.Network) {
	snap := net.Snapshot()
	sort.Slice(snap, func(i, j int) bool { return snap[i].Name < snap[j].Name })

	fmt.Printf("\ntick %d\n", net.TickNo())
	for _, s := range snap {
		if s.Kind == network.KindBus {
			continue
		}
		fmt.Printf("%-16s %-12s %-12s %-12s",
			s.Name,
			util.FormatValueFactor(s.State.InV, "V"),
			util.FormatValueFactor(s.State.InA, "A"),
			util.FormatValueFactor(s.State.InW, "W"))
		if s.State.InF > 0 {
			fmt.Printf(" %s", util.FormatFrequency(s.State.InF))
		}
		if s.Kind == network.KindBattery {
			if c, ok := net.ByName(s.Name); ok {
				fmt.Printf(" %s", util.FormatTempC(c.TempC()))
			}
		}
		if s.State.Failed {
			fmt.Print(" FAILED")
		}
		if s.State.Shorted {
			fmt.Print(" SHORTED")
		}
		fmt.Println()
	}
}
