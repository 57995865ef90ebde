package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCSV(t *testing.T) {
	data, err := RenderCSV(Table{
		Headers: []string{"Sigla", "Curso", "Promedio"},
		Rows: [][]string{
			{"IIC2143", "Ingenieria de Software", "4.5"},
			{"MAT1610", "Calculo I", "3.2"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Sigla,Curso,Promedio", lines[0])
	assert.Contains(t, lines[1], "IIC2143")
}

func TestRenderCSVRejectsHeaderlessTable(t *testing.T) {
	_, err := RenderCSV(Table{})
	assert.Error(t, err)
}

func TestRenderCSVPadsShortRows(t *testing.T) {
	data, err := RenderCSV(Table{
		Headers: []string{"a", "b"},
		Rows:    [][]string{{"only"}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), "only,")
}

func TestRenderPDFProducesDocument(t *testing.T) {
	data, err := RenderPDF(Table{
		Title:   "Estadisticas por curso",
		Headers: []string{"Sigla", "Promedio"},
		Rows:    [][]string{{"IIC2143", "4.5"}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}
