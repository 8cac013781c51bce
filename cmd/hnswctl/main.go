// Command hnswctl is a CLI for building and querying an in-memory HNSW
// index. Since the core is volatile every invocation
// rebuilds the graph from a newline-delimited vector file passed with
// --vectors: there is no on-disk index format to load.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/liliang-cn/sqvect-hnsw/pkg/hnsw"
)

var (
	vectorsPath string
	dimensions  int
	vectorType  string
	distance    string
	minkowskiP  float64
	m           uint16
	m0          uint16
	efc         uint16
	efs         uint16
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "hnswctl",
	Short: "Build and query an in-memory HNSW vector index",
	Long:  `A command-line tool for exercising the HNSW index: build a graph from a vector file, then search or inspect it.`,
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an index from --vectors and report its size",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, n, err := buildIndex()
		if err != nil {
			return err
		}
		fmt.Printf("indexed %d vectors (%d live elements)\n", n, idx.Size())
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <comma-separated-vector>",
	Short: "Build the index and run a k-NN query against it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := cmd.Flags().GetInt("k")
		if err != nil {
			return err
		}
		query, err := parseCSVVector(args[0])
		if err != nil {
			return fmt.Errorf("invalid query vector: %w", err)
		}

		idx, _, err := buildIndex()
		if err != nil {
			return err
		}

		results, err := idx.KNNSearch(query, k, int(efs))
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(results, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		for _, r := range results {
			fmt.Printf("%s\t%.6f\n", r.Record, r.Distance)
		}
		return nil
	},
}

// buildIndex reads --vectors (one comma-separated vector per line) and
// inserts each under a freshly minted record id.
func buildIndex() (*hnsw.Index[string], int, error) {
	params, err := paramsFromFlags()
	if err != nil {
		return nil, 0, err
	}

	idx, err := hnsw.NewIndex[string](params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to construct index: %w", err)
	}

	f, err := os.Open(vectorsPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open --vectors file: %w", err)
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := parseCSVVector(line)
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", n+1, err)
		}
		record := uuid.NewString()
		if err := idx.IndexDocument(record, v); err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", n+1, err)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read --vectors file: %w", err)
	}
	return idx, n, nil
}

func parseCSVVector(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		out = append(out, val)
	}
	return out, nil
}

func paramsFromFlags() (hnsw.HnswParams, error) {
	vt, err := parseVectorType(vectorType)
	if err != nil {
		return hnsw.HnswParams{}, err
	}
	d, err := parseDistance(distance, minkowskiP)
	if err != nil {
		return hnsw.HnswParams{}, err
	}

	p := hnsw.DefaultHnswParams(uint16(dimensions), vt)
	p.Distance = d
	if m > 0 {
		p.M = m
	}
	if m0 > 0 {
		p.M0 = m0
	}
	if efc > 0 {
		p.EfConstruction = efc
	}
	if err := p.Validate(); err != nil {
		return hnsw.HnswParams{}, fmt.Errorf("invalid parameters: %w", err)
	}
	return p, nil
}

func parseVectorType(s string) (hnsw.VectorType, error) {
	switch strings.ToLower(s) {
	case "f64", "":
		return hnsw.TypeF64, nil
	case "f32":
		return hnsw.TypeF32, nil
	case "i64":
		return hnsw.TypeI64, nil
	case "i32":
		return hnsw.TypeI32, nil
	case "i16":
		return hnsw.TypeI16, nil
	default:
		return 0, fmt.Errorf("unknown vector type %q", s)
	}
}

func parseDistance(s string, p float64) (hnsw.Distance, error) {
	switch strings.ToLower(s) {
	case "euclidean", "":
		return hnsw.Distance{Kind: hnsw.DistEuclidean}, nil
	case "manhattan":
		return hnsw.Distance{Kind: hnsw.DistManhattan}, nil
	case "chebyshev":
		return hnsw.Distance{Kind: hnsw.DistChebyshev}, nil
	case "cosine":
		return hnsw.Distance{Kind: hnsw.DistCosine}, nil
	case "hamming":
		return hnsw.Distance{Kind: hnsw.DistHamming}, nil
	case "jaccard":
		return hnsw.Distance{Kind: hnsw.DistJaccard}, nil
	case "pearson":
		return hnsw.Distance{Kind: hnsw.DistPearson}, nil
	case "minkowski":
		return hnsw.Distance{Kind: hnsw.DistMinkowski, P: p}, nil
	default:
		return hnsw.Distance{}, fmt.Errorf("unknown distance %q", s)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&vectorsPath, "vectors", "f", "", "path to a newline-delimited, comma-separated vector file")
	rootCmd.PersistentFlags().IntVarP(&dimensions, "dimensions", "n", 0, "vector dimension")
	rootCmd.PersistentFlags().StringVar(&vectorType, "type", "f64", "component type: f64, f32, i64, i32, i16")
	rootCmd.PersistentFlags().StringVar(&distance, "distance", "euclidean", "metric: euclidean, manhattan, chebyshev, cosine, hamming, jaccard, pearson, minkowski")
	rootCmd.PersistentFlags().Float64Var(&minkowskiP, "minkowski-p", 2, "exponent used when --distance=minkowski")
	rootCmd.PersistentFlags().Uint16Var(&m, "m", 0, "target degree on layers above 0 (0 keeps the default)")
	rootCmd.PersistentFlags().Uint16Var(&m0, "m0", 0, "target degree on layer 0 (0 keeps the default)")
	rootCmd.PersistentFlags().Uint16Var(&efc, "efc", 0, "build-time candidate width (0 keeps the default)")
	rootCmd.MarkPersistentFlagRequired("vectors")
	rootCmd.MarkPersistentFlagRequired("dimensions")

	searchCmd.Flags().IntP("k", "k", 10, "number of nearest neighbors to return")
	searchCmd.Flags().Uint16Var(&efs, "efs", 50, "query-time candidate width")
	searchCmd.Flags().BoolVar(&jsonOutput, "json", false, "output results as JSON")

	rootCmd.AddCommand(buildCmd, searchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
