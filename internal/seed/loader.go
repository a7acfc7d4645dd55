package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
)

// Loader reads sample listings from a YAML file
type Loader struct {
	filePath string
}

// NewLoader creates a new seed loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the seed file
func (l *Loader) Load() ([]domain.ListingInput, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	return toInputs(f.Listings), nil
}

func toInputs(entries []Entry) []domain.ListingInput {
	inputs := make([]domain.ListingInput, 0, len(entries))
	for _, e := range entries {
		inputs = append(inputs, domain.ListingInput{
			Title:       e.Title,
			Description: e.Description,
			Image:       e.Image,
			Price:       e.Price,
			Location:    e.Location,
			Country:     e.Country,
		})
	}
	return inputs
}
