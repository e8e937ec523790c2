package ops

import (
	"fmt"
	"sync"

	"gopkg.in/yaml.v2"

	"github.com/questbench/txvalidator/config"
)

type scoringProfile struct {
	PassFractions map[string]float64 `yaml:"pass-fractions"`
}

var (
	profileOnce sync.Once
	profile     scoringProfile
	profileErr  error
)

func loadProfile() (scoringProfile, error) {
	profileOnce.Do(func() {
		profileErr = yaml.Unmarshal(config.EmbeddedScoringFile, &profile)
		if profileErr != nil {
			profileErr = fmt.Errorf("error parsing embedded scoring file: %w", profileErr)
		}
	})
	return profile, profileErr
}

// passFractionOverride returns the configured pass fraction for a kind, if
// any. Threshold operations only; all-required policies ignore overrides.
func passFractionOverride(kind Kind) (float64, bool) {
	p, err := loadProfile()
	if err != nil {
		return 0, false
	}
	f, ok := p.PassFractions[string(kind)]
	return f, ok
}
