package shared

import (
	"log"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// SetupCfg builds a config from the defaults plus overrides, without reading
// config/default.yaml or the environment.
func SetupCfg(overrides map[string]interface{}) *koanf.Koanf {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(DefaultValues(), "."), nil); err != nil {
		log.Fatalf("error loading default values: %v", err)
	}
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			log.Fatalf("error loading overrides: %v", err)
		}
	}
	return k
}
