package yamlseed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCatalog(t *testing.T) {
	doc := `
pillars:
  - id: clientes
    name: " Clientes "
    color: "#2563eb"
    actions:
      - id: nps
        title: Medir NPS
      - id: sla
        title: Reduzir SLA
        description: Atendimento em 24h
  - id: pessoas
    name: Pessoas
`
	cmd, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, cmd.Pillars, 2)
	assert.Equal(t, "Clientes", cmd.Pillars[0].Name)
	require.Len(t, cmd.Actions, 2)
	assert.Equal(t, "clientes", cmd.Actions[1].PillarID)
	assert.Equal(t, "Atendimento em 24h", cmd.Actions[1].Description)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("pillars:\n  - id: x\n    nome: typo\n"))
	assert.Error(t, err)
}
