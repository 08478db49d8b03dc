package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult represents one parsed benchmark line.
type BenchmarkResult struct {
	Name        string
	Operation   string
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

func main() {
	flag.Parse()

	var scanner *bufio.Scanner
	var inputF *os.File
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		inputF = f
		scanner = bufio.NewScanner(f)
	} else {
		scanner = bufio.NewScanner(os.Stdin)
	}

	results := parseBenchmarks(scanner)

	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	report := generateMarkdownReport(results)

	if *outputFile != "" {
		err := os.WriteFile(*outputFile, []byte(report), 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			if inputF != nil {
				inputF.Close()
			}
			os.Exit(1)
		}
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
		}
	} else {
		fmt.Fprint(os.Stdout, report)
	}

	if inputF != nil {
		inputF.Close()
	}
}

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	// BenchmarkAllocateFree-8    10000    24.5 ns/op    0 B/op    0 allocs/op
	benchmarkRegex := regexp.MustCompile(
		`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+(?:B|MB)/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
	)

	for scanner.Scan() {
		line := scanner.Text()

		// Accept `go test -json` streams too: unwrap the Output field.
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		name := matches[1]
		iterations, _ := strconv.Atoi(matches[2])
		nsPerOp, _ := strconv.ParseFloat(matches[3], 64)

		var bytesPerOp int64
		var allocsPerOp int64
		if matches[4] != "" {
			bytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			allocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}

		// Benchmark<Operation>-<procs>, with an optional /variant segment.
		operation := strings.TrimPrefix(name, "Benchmark")
		if dashIdx := strings.LastIndex(operation, "-"); dashIdx > 0 {
			operation = operation[:dashIdx]
		}

		results = append(results, BenchmarkResult{
			Name:        name,
			Operation:   operation,
			Iterations:  iterations,
			NsPerOp:     nsPerOp,
			BytesPerOp:  bytesPerOp,
			AllocsPerOp: allocsPerOp,
		})
	}
	return results
}

func generateMarkdownReport(results []BenchmarkResult) string {
	var sb strings.Builder

	sb.WriteString("# Pool Benchmark Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC3339)))

	if len(results) == 0 {
		sb.WriteString("No benchmark results found.\n")
		return sb.String()
	}

	sorted := make([]BenchmarkResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].NsPerOp < sorted[j].NsPerOp
	})

	sb.WriteString("| Operation | Iterations | ns/op | B/op | allocs/op |\n")
	sb.WriteString("|-----------|-----------:|------:|-----:|----------:|\n")
	for _, r := range sorted {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.1f | %d | %d |\n",
			r.Operation, r.Iterations, r.NsPerOp, r.BytesPerOp, r.AllocsPerOp))
	}

	// Flag benchmarks that hit the Go heap: the steady-state paths are
	// expected to be allocation-free.
	var heavy []BenchmarkResult
	for _, r := range results {
		if r.AllocsPerOp > 0 {
			heavy = append(heavy, r)
		}
	}
	if len(heavy) > 0 {
		sb.WriteString("\n## Benchmarks touching the Go heap\n\n")
		for _, r := range heavy {
			sb.WriteString(fmt.Sprintf("- %s: %d allocs/op\n", r.Operation, r.AllocsPerOp))
		}
	}

	return sb.String()
}
