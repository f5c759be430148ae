package kv

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/kvt/cmd/util"
	"github.com/ValentinKolb/kvt/lib/common"
	"github.com/google/uuid"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the typed templates",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__perf"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

// perfResult is the outcome of one benchmark
type perfResult struct {
	bench testing.BenchmarkResult
	timer gometrics.Timer
}

func init() {
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")
	perfKeyPrefix = "__perf-" + uuid.NewString()[:8]

	return nil
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for the typed templates")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(client.Config.String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	values := client.Template.OpsForValue()
	lists := client.Template.OpsForList()
	hashes := client.Template.OpsForHash()
	sets := client.Template.OpsForSet()
	zsets := client.Template.OpsForZSet()
	largeValue := strings.Repeat("x", perfLargeValueSizeKB*1024)

	benchmarks := []struct {
		name    string
		prepare func(key string) error
		op      func(key string, i int) error
	}{
		{
			name: "set",
			op: func(key string, _ int) error {
				return values.Set(ctx, key, "test")
			},
		},
		{
			name: "set-large",
			op: func(key string, _ int) error {
				return values.Set(ctx, key, largeValue)
			},
		},
		{
			name: "get",
			prepare: func(key string) error {
				return values.Set(ctx, key, "test")
			},
			op: func(key string, _ int) error {
				_, _, err := values.Get(ctx, key)
				return err
			},
		},
		{
			name: "list-push-pop",
			op: func(key string, i int) error {
				if i%2 == 0 {
					_, err := lists.RightPush(ctx, key, "test")
					return err
				}
				_, _, err := lists.LeftPop(ctx, key)
				return err
			},
		},
		{
			name: "hash-put",
			op: func(key string, i int) error {
				return hashes.Put(ctx, key, strconv.Itoa(i%perfKeySpread), "test")
			},
		},
		{
			name: "set-add",
			op: func(key string, i int) error {
				_, err := sets.Add(ctx, key, strconv.Itoa(i%perfKeySpread))
				return err
			},
		},
		{
			name: "zset-add",
			op: func(key string, i int) error {
				_, err := zsets.Add(ctx, key, strconv.Itoa(i%perfKeySpread), float64(i))
				return err
			},
		},
		{
			name: "mixed",
			op: func(key string, i int) error {
				var err error
				switch i % 4 {
				case 0:
					err = values.Set(ctx, key, "test")
				case 1:
					_, _, err = values.Get(ctx, key)
				case 2:
					_, err = client.Template.Delete(ctx, key)
				case 3:
					_, err = client.Template.HasKey(ctx, key)
				}
				return err
			},
		},
	}

	results := make(map[string]perfResult)
	names := make([]string, 0, len(benchmarks))
	for _, bm := range benchmarks {
		if shouldSkip(bm.name) {
			fmt.Printf("%-20sskipped\n", bm.name)
			continue
		}

		getKey, iter := getKeys(bm.name)
		if bm.prepare != nil {
			iter(func(k string) {
				if err := bm.prepare(k); err != nil {
					Logger.Warningf("(%s) - error preparing key: %v", bm.name, err)
				}
			})
		}

		timer := gometrics.NewTimer()
		result := testing.Benchmark(func(b *testing.B) {
			b.SetParallelism(perfNumThreads)
			b.ResetTimer()

			b.RunParallel(func(pb *testing.PB) {
				counter := 0
				for pb.Next() {
					start := time.Now()
					if err := bm.op(getKey(counter), counter); err != nil {
						Logger.Warningf("(%s) - error: %v", bm.name, err)
					}
					timer.UpdateSince(start)
					counter++
				}
			})
		})

		cleanup(bm.name, iter)
		results[bm.name] = perfResult{bench: result, timer: timer}
		names = append(names, bm.name)
		printResult(bm.name, results[bm.name])
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, names, results, client.Config); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	return slices.Contains(perfSkip, test)
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

func cleanup(test string, iter func(func(string))) {
	iter(func(k string) {
		if _, err := client.Template.Delete(ctx, k); err != nil {
			Logger.Warningf("(%s) - error deleting key: %v", test, err)
		}
	})
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result perfResult) {
	if result.bench.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)
	p := result.timer.Percentiles([]float64{0.5, 0.99})

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p99=%s\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec, time.Duration(p[0]), time.Duration(p[1]))
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, names []string, results map[string]perfResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50", "P99", "Max",
		"Backend", "Endpoints", "Timeout", "PoolSize",
		"KeySerializer", "ValueSerializer",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, test := range names {
		result := results[test]
		nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1)
		opsPerSec := 1.0 / (nsPerOp / 1e9)
		p := result.timer.Percentiles([]float64{0.5, 0.99})

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			time.Duration(p[0]).String(),
			time.Duration(p[1]).String(),
			time.Duration(result.timer.Max()).String(),
			string(config.Backend),
			strings.Join(config.Endpoints, ";"),
			config.Timeout.String(),
			strconv.Itoa(config.PoolSize),
			config.KeySerializer,
			config.ValueSerializer,
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
