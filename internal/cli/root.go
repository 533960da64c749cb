// Package cli implements the bkmeans command line.
package cli

import (
	"context"
	"fmt"

	"github.com/hupe1980/bkmeans"
	"github.com/hupe1980/bkmeans/dataset"
	"github.com/hupe1980/bkmeans/internal/config"
	"github.com/hupe1980/bkmeans/report"
	"github.com/spf13/cobra"
)

type flags struct {
	config           string
	input            string
	k                int
	maxIterations    int
	seed             int64
	distance         string
	minDivisibleSize int
	minDivisibleFrac float64
	featuresCol      string
	parallelism      int
	logLevel         string
}

// NewRootCommand returns the bkmeans command. Flags override values read
// from --config.
func NewRootCommand() *cobra.Command {
	f := &flags{}
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "bkmeans",
		Short: "Bisecting k-means clustering",
		Long: `Fit a bisecting k-means model and print its cost and cluster centers.

Without --input the built-in six-row demo dataset is used.

Examples:
  bkmeans                                  # Fit the demo data with k=2
  bkmeans --input points.csv.zst --k 8     # Fit a compressed CSV file
  bkmeans --config bkmeans.yaml --seed 7   # Override a config file value
  bkmeans --input s3://bucket/points.csv   # Fit a CSV object stored in S3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "YAML configuration file")
	fl.StringVarP(&f.input, "input", "i", "", "CSV input path, s3://bucket/key or minio://host:port/bucket/key (.gz, .zst and .lz4 are decompressed); empty uses the demo data")
	fl.IntVar(&f.k, "k", def.K, "Number of leaf clusters")
	fl.IntVar(&f.maxIterations, "max-iterations", def.MaxIterations, "Refinement iterations per split")
	fl.Int64Var(&f.seed, "seed", def.Seed, "Random seed")
	fl.StringVar(&f.distance, "distance", def.DistanceMeasure, "Distance measure (euclidean, cosine)")
	fl.IntVar(&f.minDivisibleSize, "min-divisible-size", 0, "Minimum member count of a divisible cluster")
	fl.Float64Var(&f.minDivisibleFrac, "min-divisible-fraction", 0, "Minimum divisible cluster size as a fraction of the rows")
	fl.StringVar(&f.featuresCol, "features-col", def.FeaturesCol, "Name of the features column")
	fl.IntVarP(&f.parallelism, "parallelism", "p", def.Parallelism, "Goroutines used per split")
	fl.StringVar(&f.logLevel, "log-level", def.LogLevel, "Log level (debug, info, warn, error)")

	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (f *flags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		loaded, err := config.Load(f.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fl := cmd.Flags()
	if fl.Changed("input") {
		cfg.Input = f.input
	}
	if fl.Changed("k") {
		cfg.K = f.k
	}
	if fl.Changed("max-iterations") {
		cfg.MaxIterations = f.maxIterations
	}
	if fl.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fl.Changed("distance") {
		cfg.DistanceMeasure = f.distance
	}
	if fl.Changed("min-divisible-size") {
		// Zero means unset in the config file; on the command line it is a value.
		if f.minDivisibleSize < 1 {
			return nil, fmt.Errorf("%w: --min-divisible-size must be at least 1, got %d", bkmeans.ErrInvalidConfig, f.minDivisibleSize)
		}
		cfg.MinDivisibleClusterSize = f.minDivisibleSize
		cfg.MinDivisibleClusterFraction = 0
	}
	if fl.Changed("min-divisible-fraction") {
		if !(f.minDivisibleFrac > 0) {
			return nil, fmt.Errorf("%w: --min-divisible-fraction must be in (0, 1], got %v", bkmeans.ErrInvalidConfig, f.minDivisibleFrac)
		}
		cfg.MinDivisibleClusterFraction = f.minDivisibleFrac
		if !fl.Changed("min-divisible-size") {
			cfg.MinDivisibleClusterSize = 0
		}
	}
	if fl.Changed("features-col") {
		cfg.FeaturesCol = f.featuresCol
	}
	if fl.Changed("parallelism") {
		cfg.Parallelism = f.parallelism
	}
	if fl.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	opts = append(opts, bkmeans.WithLogger(bkmeans.NewWriterLogger(cmd.ErrOrStderr(), level)))

	var data dataset.Source = dataset.Demo()
	if cfg.Input != "" {
		frame, err := loadInput(ctx, cfg.Input, cfg.FeaturesCol)
		if err != nil {
			return fmt.Errorf("load input: %w", err)
		}
		data = frame
	}

	model, err := bkmeans.Fit(ctx, data, opts...)
	if err != nil {
		return err
	}

	cost, err := model.ComputeCost(data)
	if err != nil {
		return err
	}

	return report.Write(cmd.OutOrStdout(), cost, model.ClusterCenters())
}
