package textract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLegacyRendersMarkers(t *testing.T) {
	assert.Equal(t, "texto del contrato", okResult("texto del contrato", 1, "pdf-text").Legacy())
	assert.Equal(t, "[INFO] PDF sin texto extraíble", infoResult("PDF sin texto extraíble", 0).Legacy())
	assert.Equal(t, "[ERROR] Archivo no encontrado", errorResult("Archivo no encontrado").Legacy())
}
