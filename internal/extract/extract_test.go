package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractops/contracts-tracker/constants"
	"github.com/contractops/contracts-tracker/internal/vocab"
)

func TestContractDataEmptyInput(t *testing.T) {
	a := NewAssembler(vocab.NewMemoryStore(), "", nil)

	record := a.ContractData("")
	assert.Equal(t, "", record.ContractNumber)
	assert.Equal(t, "", record.Contractor)
	assert.Equal(t, "", record.Description)
	assert.Equal(t, "", record.Amount)
	assert.Equal(t, "", record.TermDays)
	assert.NotNil(t, record.Annexes)
	assert.Empty(t, record.Annexes)
	assert.Equal(t, constants.DefaultArea, record.Area)
}

func TestContractDataFullDocument(t *testing.T) {
	store := vocab.NewMemoryStore()
	a := NewAssembler(store, "", nil)

	text := "CONTRATO NÚMERO 641234567\r\n" +
		"CONSTRUCTORA MARINA DEL NORTE S.A.\r\n" +
		"Hoja 1 DE 10\r\n" +
		"\r\n" +
		"2. INTEGRIDAD DEL CONTRATO\r\n" +
		"Forman parte del contrato los Anexos \"A\", \"B-1\", \"C\" y \"SSPA\".\r\n" +
		"4. OBJETO DEL CONTRATO\r\n" +
		"MANTENIMIENTO DE PLATAFORMAS MARINAS\r\n" +
		"5. MONTO: el monto total es de $1,500,000.00 M.N.\r\n" +
		"11. PLAZO: el plazo de ejecución es de 180 DÍAS naturales\r\n"

	record := a.ContractData(text)
	assert.Equal(t, "641234567", record.ContractNumber)
	assert.Equal(t, "CONSTRUCTORA MARINA DEL NORTE S.A.", record.Contractor)
	assert.Equal(t, "MANTENIMIENTO DE PLATAFORMAS MARINAS", record.Description)
	assert.Equal(t, "$1,500,000.00", record.Amount)
	assert.Equal(t, "180", record.TermDays)
	assert.Equal(t, []string{"A", "B-1", "C", "SSPA"}, record.Annexes)
	assert.Equal(t, constants.DefaultArea, record.Area)

	for _, code := range record.Annexes {
		require.True(t, store.Contains(code))
	}
}

func TestContractDataUnparseableText(t *testing.T) {
	a := NewAssembler(vocab.NewMemoryStore(), "UNIDAD DE PRUEBA", nil)

	record := a.ContractData("nada que ver aquí, solo prosa sin estructura")
	assert.Equal(t, "", record.ContractNumber)
	assert.Empty(t, record.Annexes)
	assert.Equal(t, "UNIDAD DE PRUEBA", record.Area)
}
