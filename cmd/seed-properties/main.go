package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/metacatalog/catalog/config"
	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/core/metadata"
	"github.com/metacatalog/catalog/internal/core/property"
	"github.com/metacatalog/catalog/internal/logger"
	"github.com/metacatalog/catalog/internal/storage/cache"
	"github.com/metacatalog/catalog/internal/storage/postgres"
)

var (
	file string
	v    = config.NewViper()
)

var rootCmd = &cobra.Command{
	Use:   "seed-properties",
	Short: "Create property definitions from a JSON file",
	Long: `Reads a JSON array of property definitions and creates each one that does
not already exist for its entity type. Existing definitions are left untouched,
so the command can be re-run safely.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&file, "file", "f", "", "path to the property definitions (JSON array)")
	_ = rootCmd.MarkFlagRequired("file")
	if err := config.BindFlags(v, rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(cfg.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	reqs, err := readDefinitions(f)
	if err != nil {
		return err
	}

	db, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	registry := property.NewService(property.NewRepository(db), metadata.NewInvalidator(store), log, nil)

	created, skipped, err := seed(ctx, registry, reqs, log)
	if err != nil {
		return err
	}
	fmt.Printf("Created %d properties, skipped %d existing\n", created, skipped)
	return nil
}

func readDefinitions(r io.Reader) ([]property.CreatePropertyRequest, error) {
	var reqs []property.CreatePropertyRequest
	if err := json.NewDecoder(r).Decode(&reqs); err != nil {
		return nil, fmt.Errorf("failed to parse property definitions: %w", err)
	}
	return reqs, nil
}

// Registry is the subset of property.Service the seeder needs.
type Registry interface {
	Find(ctx context.Context, filter property.Filter, opts catalog.FindOptions) ([]*property.Property, error)
	Create(ctx context.Context, req *property.CreatePropertyRequest) (*property.Property, error)
}

// seed creates every definition whose (name, entity type) pair is not yet
// registered. Soft-deleted properties count as registered: the unique
// constraint still covers them.
func seed(ctx context.Context, registry Registry, reqs []property.CreatePropertyRequest, log *zap.Logger) (created, skipped int, err error) {
	for i := range reqs {
		req := &reqs[i]
		req.PropertyName = strings.TrimSpace(req.PropertyName)

		existing, err := registry.Find(ctx, property.Filter{
			PropertyName: &req.PropertyName,
			EntityType:   &req.EntityType,
		}, catalog.FindOptions{Limit: 1, WithDeleted: true})
		if err != nil {
			return created, skipped, err
		}
		if len(existing) > 0 {
			log.Info("property exists, skipping",
				zap.String("property_name", req.PropertyName),
				zap.String("entity_type", string(req.EntityType)),
				zap.Bool("deleted", existing[0].DeletedAt != nil))
			skipped++
			continue
		}

		p, err := registry.Create(ctx, req)
		if err != nil {
			return created, skipped, fmt.Errorf("failed to create %s/%s: %w", req.EntityType, req.PropertyName, err)
		}
		log.Info("property created",
			zap.Stringer("id", p.ID),
			zap.String("property_name", p.PropertyName),
			zap.String("entity_type", string(p.EntityType)))
		created++
	}
	return created, skipped, nil
}
