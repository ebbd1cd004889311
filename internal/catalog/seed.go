package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	dErrors "lifeledger/pkg/domain-errors"
)

// seedFile is the YAML shape of a catalog seed.
type seedFile struct {
	ObjectTypes []seedEntry `yaml:"object_types"`
}

type seedEntry struct {
	Name         string `yaml:"name"`
	Category     string `yaml:"category"`
	Price        int64  `yaml:"price"`
	PriceBand    string `yaml:"price_band"`
	ImageRef     string `yaml:"image_ref"`
	Purchasable  bool   `yaml:"purchasable"`
	Mortgageable bool   `yaml:"mortgageable"`
	Rentable     bool   `yaml:"rentable"`
}

// LoadSeed registers every entry of a YAML seed file. Entries that already
// exist are left untouched so restarts are idempotent.
func (s *Service) LoadSeed(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog seed: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("catalog seed: %w", err)
	}

	for _, entry := range seed.ObjectTypes {
		_, err := s.Add(ctx, AddParams{
			Name:         entry.Name,
			Category:     entry.Category,
			Price:        entry.Price,
			PriceBand:    entry.PriceBand,
			ImageRef:     entry.ImageRef,
			Purchasable:  entry.Purchasable,
			Mortgageable: entry.Mortgageable,
			Rentable:     entry.Rentable,
		})
		if err != nil && !dErrors.Is(err, dErrors.CodeConflict) {
			return fmt.Errorf("seed entry %q: %w", entry.Name, err)
		}
	}
	return nil
}
