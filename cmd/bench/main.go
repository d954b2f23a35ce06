// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main provides comprehensive benchmarking tools for the weak list.
//
// This command-line tool performs various performance benchmarks to evaluate
// container performance under different workloads and conditions. It's useful
// for performance testing, capacity planning, and quantifying the cost of
// weak references against a strong-reference baseline.
//
// # Benchmark Categories
//
// The benchmark suite includes:
//   - Single-threaded operations (baseline performance)
//   - Concurrent adds (write contention testing)
//   - Mixed workloads (real-world registry simulation)
//   - Iteration performance (bulk traversal)
//   - Sweep cost (full scan vs epoch-gated skip)
//   - Churn (transients dying under the container)
//   - Strong-reference baseline (hashicorp/golang-lru comparison)
//   - Memory usage analysis (heap growth, reclamation, peak RSS)
//
// # Usage
//
// Run all benchmarks:
//
//	go run ./cmd/bench
//
// Run one suite with a custom workload:
//
//	go run ./cmd/bench -s 5 -f workload.yaml
//
// A workload file overrides only the fields it names:
//
//	items: 50000
//	ops_per_goroutine: 5000
//	goroutines: [1, 4, 16]
//	read_ratio: 0.9
//	churn_rounds: 20
//
// # Benchmark Details
//
// ## Sweep Cost
// The container only pays for a full scan when a garbage collection cycle
// completed since the last sweep; every other sweep resolves from a cached
// count. This suite measures both sides of that gate.
//
// ## Churn
// Rounds of transient elements are added, dropped, and collected. This is the
// workload weak references exist for: the container shrinks without any
// remove calls.
//
// ## Strong-Reference Baseline
// The same registry workload runs against hashicorp/golang-lru, which pins
// its entries. The delta is the price of weak tracking; the baseline also
// shows what leak-free bookkeeping costs when done by eviction instead of
// reclamation.
//
// # Dangers and Warnings
//
//   - **Resource Consumption**: Benchmarks can consume significant CPU and memory resources.
//   - **Garbage Collection**: Several suites force GC cycles; wall-clock results include them.
//   - **System Impact**: High-intensity benchmarks may impact other system processes.
//   - **Variance**: Reclamation timing is the collector's choice; churn results vary run to run.
//
// # Best Practices
//
//   - Run benchmarks on dedicated systems to avoid interference
//   - Use consistent hardware and software configurations for comparisons
//   - Run multiple iterations to account for variance
//   - Document benchmark conditions for reproducibility
//
// # Interpreting Results
//
// Key metrics to consider:
//   - **Throughput**: Operations per second (higher is better)
//   - **Skip cost**: The epoch-gated sweep should be orders of magnitude cheaper than a scan
//   - **Reclamation**: Swept-entry counts show the container cleaning up after the collector
//   - **Memory**: Heap growth per entry and whether reclamation returns it
//
// # See Also
//
// For interactive exploration, see the repl tool. For the container API, see
// the root weaklist package.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jessevdk/go-flags"

	core "github.com/kianostad/weaklist/internal/core"
)

func main() {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}

	workload := DefaultWorkload()
	if opts.Workload != "" {
		var err error
		workload, err = LoadWorkload(opts.Workload)
		if err != nil {
			log.Fatalf("%v", err)
		}
	}

	fmt.Println("Weak List Benchmarks")
	fmt.Println("====================")

	suites := []struct {
		id  int
		run func(Workload)
	}{
		{1, benchmarkSingleThreaded},
		{2, benchmarkConcurrentAdds},
		{3, benchmarkMixedWorkload},
		{4, benchmarkIteration},
		{5, benchmarkSweepCost},
		{6, benchmarkChurn},
		{7, benchmarkStrongBaseline},
		{8, benchmarkMemoryUsage},
	}
	for _, s := range suites {
		if opts.Suite != 0 && opts.Suite != s.id {
			continue
		}
		s.run(workload)
	}
}

// makeValues allocates n pinned values. The caller's reference to the slice
// is what keeps them alive; the container never will.
func makeValues(n int, prefix string) []*string {
	out := make([]*string, n)
	for i := range out {
		v := fmt.Sprintf("%s%d", prefix, i)
		out[i] = &v
	}
	return out
}

func benchmarkSingleThreaded(w Workload) {
	fmt.Println("\n1. Single-threaded operations")
	ctx := context.Background()
	l := core.New[string]()
	defer l.Close(ctx)

	pinned := makeValues(w.Items, "item")

	start := time.Now()
	for _, p := range pinned {
		l.Add(ctx, p)
	}
	duration := time.Since(start)
	fmt.Printf("   Add: %d ops in %v (%.0f ops/sec)\n",
		w.Items, duration, float64(w.Items)/duration.Seconds())

	start = time.Now()
	for _, p := range pinned {
		l.Contains(ctx, p)
	}
	duration = time.Since(start)
	fmt.Printf("   Contains: %d ops in %v (%.0f ops/sec)\n",
		w.Items, duration, float64(w.Items)/duration.Seconds())

	start = time.Now()
	n := l.Len(ctx)
	fmt.Printf("   Len: %d entries in %v\n", n, time.Since(start))
	runtime.KeepAlive(pinned)
}

func benchmarkConcurrentAdds(w Workload) {
	fmt.Println("\n2. Concurrent adds")

	addsPerGoroutine := w.OpsPerGoroutine / 10
	if addsPerGoroutine == 0 {
		addsPerGoroutine = 1
	}

	for _, numGoroutines := range w.Goroutines {
		ctx := context.Background()
		l := core.New[string]()

		pinned := make([][]*string, numGoroutines)
		for i := range pinned {
			pinned[i] = makeValues(addsPerGoroutine, fmt.Sprintf("g%d_", i))
		}

		var wg sync.WaitGroup
		start := time.Now()

		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(row []*string) {
				defer wg.Done()
				for _, p := range row {
					l.Add(ctx, p)
				}
			}(pinned[i])
		}

		wg.Wait()
		duration := time.Since(start)
		totalOps := numGoroutines * addsPerGoroutine
		fmt.Printf("   %d goroutines: %d ops in %v (%.0f ops/sec)\n",
			numGoroutines, totalOps, duration, float64(totalOps)/duration.Seconds())
		runtime.KeepAlive(pinned)

		l.Close(ctx)
	}
}

func benchmarkMixedWorkload(w Workload) {
	fmt.Printf("\n3. Mixed workload (%.0f%% reads)\n", w.ReadRatio*100)
	ctx := context.Background()
	l := core.New[string]()
	defer l.Close(ctx)

	members := makeValues(w.Items/100+1, "member")
	for _, p := range members {
		l.Add(ctx, p)
	}
	readPct := int(w.ReadRatio * 100)

	for _, numGoroutines := range w.Goroutines {
		var wg sync.WaitGroup
		start := time.Now()

		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(goroutineID int) {
				defer wg.Done()
				for j := 0; j < w.OpsPerGoroutine; j++ {
					if j%100 < readPct {
						l.Contains(ctx, members[j%len(members)])
					} else {
						// Writes register transients nothing pins; the
						// collector takes them back mid-run.
						v := fmt.Sprintf("transient%d_%d", goroutineID, j)
						l.Add(ctx, &v)
					}
				}
			}(i)
		}

		wg.Wait()
		duration := time.Since(start)
		totalOps := numGoroutines * w.OpsPerGoroutine
		fmt.Printf("   %d goroutines: %d ops in %v (%.0f ops/sec)\n",
			numGoroutines, totalOps, duration, float64(totalOps)/duration.Seconds())
	}
	runtime.KeepAlive(members)
}

func benchmarkIteration(w Workload) {
	fmt.Println("\n4. Iteration")
	ctx := context.Background()
	l := core.New[string]()
	defer l.Close(ctx)

	size := w.Items / 10
	if size == 0 {
		size = 1
	}
	pinned := makeValues(size, "item")
	for _, p := range pinned {
		l.Add(ctx, p)
	}

	start := time.Now()
	count := 0
	for range l.Items(ctx) {
		count++
	}
	duration := time.Since(start)
	fmt.Printf("   Iteration over %d elements: %v (%.0f elems/sec)\n",
		count, duration, float64(count)/duration.Seconds())

	start = time.Now()
	snap := l.Snapshot(ctx)
	duration = time.Since(start)
	fmt.Printf("   Snapshot of %d elements: %v (%.0f elems/sec)\n",
		len(snap), duration, float64(len(snap))/duration.Seconds())
	runtime.KeepAlive(pinned)
}

func benchmarkSweepCost(w Workload) {
	fmt.Println("\n5. Sweep cost (full scan vs epoch-gated skip)")
	ctx := context.Background()
	l := core.New[string](core.WithoutBackgroundSweep())
	defer l.Close(ctx)

	pinned := makeValues(w.Items, "item")
	for _, p := range pinned {
		l.Add(ctx, p)
	}

	// A completed cycle forces the next sweep to walk every entry.
	runtime.GC()
	start := time.Now()
	l.ManualSweep(ctx)
	fmt.Printf("   Full scan over %d entries: %v\n", w.Items, time.Since(start))

	// Until another cycle completes, every sweep resolves from the cache.
	skips := w.OpsPerGoroutine * 10
	start = time.Now()
	for i := 0; i < skips; i++ {
		l.ManualSweep(ctx)
	}
	duration := time.Since(start)
	fmt.Printf("   Epoch-gated skip: %d sweeps in %v (%.0f ns/op)\n",
		skips, duration, float64(duration.Nanoseconds())/float64(skips))
	runtime.KeepAlive(pinned)
}

func benchmarkChurn(w Workload) {
	fmt.Println("\n6. Churn (transients dying under the container)")
	ctx := context.Background()
	l := core.New[string]()
	defer l.Close(ctx)

	batch := w.Items / 10
	if batch == 0 {
		batch = 1
	}
	keep := makeValues(batch, "keep")
	for _, p := range keep {
		l.Add(ctx, p)
	}

	start := time.Now()
	for round := 0; round < w.ChurnRounds; round++ {
		addTransients(ctx, l, batch, round)
		runtime.GC()
		l.Len(ctx)
	}
	duration := time.Since(start)

	totalAdded := w.ChurnRounds * batch
	fmt.Printf("   %d rounds x %d transients in %v (%.0f adds/sec)\n",
		w.ChurnRounds, batch, duration, float64(totalAdded)/duration.Seconds())
	stats := l.Metrics(ctx)
	fmt.Printf("   Survivors: %d, swept entries: %d\n", l.Len(ctx), stats.Sweeps.SweptEntries)
	runtime.KeepAlive(keep)
}

// addTransients registers n elements nothing outside the call pins. Once it
// returns they are the collector's to take.
func addTransients(ctx context.Context, l core.Collection[string], n, round int) {
	for i := 0; i < n; i++ {
		v := fmt.Sprintf("round%d_%d", round, i)
		l.Add(ctx, &v)
	}
}

func benchmarkStrongBaseline(w Workload) {
	fmt.Println("\n7. Strong-reference baseline (hashicorp/golang-lru)")
	ctx := context.Background()

	pinned := makeValues(w.Items, "item")

	l := core.New[string]()
	start := time.Now()
	for _, p := range pinned {
		l.Add(ctx, p)
	}
	addDur := time.Since(start)
	start = time.Now()
	for _, p := range pinned {
		l.Contains(ctx, p)
	}
	lookupDur := time.Since(start)
	l.Close(ctx)
	fmt.Printf("   weaklist: add %.0f ops/sec, contains %.0f ops/sec\n",
		float64(w.Items)/addDur.Seconds(), float64(w.Items)/lookupDur.Seconds())

	cache, err := lru.New[*string, struct{}](w.Items)
	if err != nil {
		log.Fatalf("failed to build lru baseline: %v", err)
	}
	start = time.Now()
	for _, p := range pinned {
		cache.Add(p, struct{}{})
	}
	addDur = time.Since(start)
	start = time.Now()
	for _, p := range pinned {
		cache.Contains(p)
	}
	lookupDur = time.Since(start)
	fmt.Printf("   golang-lru: add %.0f ops/sec, contains %.0f ops/sec\n",
		float64(w.Items)/addDur.Seconds(), float64(w.Items)/lookupDur.Seconds())
	fmt.Println("   (the LRU pins its entries; the delta is the price of weak tracking)")
	runtime.KeepAlive(pinned)
}

func benchmarkMemoryUsage(w Workload) {
	fmt.Println("\n8. Memory usage")
	ctx := context.Background()
	l := core.New[string]()
	defer l.Close(ctx)

	runtime.GC()
	var before runtime.MemStats
	runtime.ReadMemStats(&before)

	pinned := makeValues(w.Items, "item")
	for _, p := range pinned {
		l.Add(ctx, p)
	}

	var populated runtime.MemStats
	runtime.ReadMemStats(&populated)
	fmt.Printf("   Heap growth for %d entries: %d KB\n",
		w.Items, (int64(populated.HeapAlloc)-int64(before.HeapAlloc))/1024)

	// The pins die at the KeepAlive; the container shrinks to nothing.
	runtime.KeepAlive(pinned)
	runtime.GC()
	n := l.Len(ctx)
	runtime.GC()

	var reclaimed runtime.MemStats
	runtime.ReadMemStats(&reclaimed)
	fmt.Printf("   Survivors after dropping pins: %d\n", n)
	fmt.Printf("   Heap after reclaim: %d KB above baseline\n",
		(int64(reclaimed.HeapAlloc)-int64(before.HeapAlloc))/1024)

	stats := l.Metrics(ctx)
	fmt.Printf("   Sweep scans: %d, swept entries: %d\n", stats.Sweeps.Scans, stats.Sweeps.SweptEntries)
	if rss := maxRSS(); rss > 0 {
		fmt.Printf("   Peak RSS: %d KB\n", rss)
	}
}
