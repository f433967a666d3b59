package yamlseed

import (
	"fmt"
	"io"
	"strings"

	"jornada/contexts/strategy-journey/catalog-service/application/commands"
	"jornada/contexts/strategy-journey/catalog-service/domain/entities"

	"gopkg.in/yaml.v3"
)

// catalogFile is the operator-maintained catalog document:
//
//	pillars:
//	  - id: clientes
//	    name: Clientes
//	    color: "#2563eb"
//	    actions:
//	      - id: clientes-nps
//	        title: Medir NPS trimestral
type catalogFile struct {
	Pillars []pillarEntry `yaml:"pillars"`
}

type pillarEntry struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Color       string        `yaml:"color"`
	Icon        string        `yaml:"icon"`
	Actions     []actionEntry `yaml:"actions"`
}

type actionEntry struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Decode reads a catalog document into a seed command. Unknown keys are
// rejected so typos in the file do not silently drop data.
func Decode(r io.Reader) (commands.SeedCatalogCommand, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var file catalogFile
	if err := decoder.Decode(&file); err != nil {
		return commands.SeedCatalogCommand{}, fmt.Errorf("decode catalog yaml: %w", err)
	}

	var cmd commands.SeedCatalogCommand
	for _, pillar := range file.Pillars {
		pillarID := strings.TrimSpace(pillar.ID)
		cmd.Pillars = append(cmd.Pillars, entities.Pillar{
			PillarID:    pillarID,
			Name:        strings.TrimSpace(pillar.Name),
			Description: strings.TrimSpace(pillar.Description),
			Color:       strings.TrimSpace(pillar.Color),
			Icon:        strings.TrimSpace(pillar.Icon),
		})
		for _, action := range pillar.Actions {
			cmd.Actions = append(cmd.Actions, entities.Action{
				ActionID:    strings.TrimSpace(action.ID),
				PillarID:    pillarID,
				Title:       strings.TrimSpace(action.Title),
				Description: strings.TrimSpace(action.Description),
			})
		}
	}
	return cmd, nil
}
