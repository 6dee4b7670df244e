package party

import (
	"fmt"
	"io"
	"os"

	"foodsupply/internal/supply/models"

	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout of a participant directory seed:
//
//	parties:
//	  - role: supplier
//	    id: supplier@acme.org
//	    country_id: UK
//	    org_id: ACME
//	  - role: regulator
//	    id: regulator@fsa.gov.uk
//	    exempted_org_ids: [ACME]
type SeedFile struct {
	Parties []models.RegisterPartyRequest `yaml:"parties"`
}

// DecodeSeed parses a seed document. Entries are normalized but not
// validated; registration validates each one.
func DecodeSeed(r io.Reader) ([]models.RegisterPartyRequest, error) {
	var seed SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode party seed: %w", err)
	}
	for i := range seed.Parties {
		seed.Parties[i].Normalize()
	}
	return seed.Parties, nil
}

// LoadSeedFile reads and decodes the seed at path.
func LoadSeedFile(path string) ([]models.RegisterPartyRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open party seed: %w", err)
	}
	defer f.Close()
	return DecodeSeed(f)
}
