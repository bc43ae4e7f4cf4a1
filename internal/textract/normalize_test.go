package textract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	in := "línea uno\r\nlínea\t\tdos   tres\r\n\r\n\r\n\r\nlínea cuatro  "
	want := "línea uno\nlínea dos tres\n\nlínea cuatro"
	assert.Equal(t, want, Normalize(in))
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "  a\r\n\r\n\r\nb\t c  "
	once := Normalize(in)
	assert.Equal(t, once, Normalize(once))
}

func TestNormalizeLeavesLoneCR(t *testing.T) {
	assert.Equal(t, "uno\rdos", Normalize("uno\rdos"))
	assert.Equal(t, "uno\ndos", Normalize("uno\r\ndos"))
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   \r\n \t "))
}
