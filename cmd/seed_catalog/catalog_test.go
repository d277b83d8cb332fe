package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseCatalog_Latin1(t *testing.T) {
	src := "# catálogo\nproveedor;Panadería Núñez;888888888888\nproducto;Harina;10,50;12.00\n\nproducto;Azúcar;3;4\n"
	latin1, err := charmap.ISO8859_1.NewEncoder().String(src)
	require.NoError(t, err)

	r, err := decoderFor(bytes.NewReader([]byte(latin1)), "latin1")
	require.NoError(t, err)
	cat, err := parseCatalog(r)
	require.NoError(t, err)

	require.Len(t, cat.suppliers, 1)
	assert.Equal(t, "Panadería Núñez", cat.suppliers[0].title)
	assert.Equal(t, "888888888888", cat.suppliers[0].inn)

	require.Len(t, cat.products, 2)
	assert.Equal(t, "Harina", cat.products[0].title)
	assert.Equal(t, "10.5", cat.products[0].purchasePrice.String())
	assert.Equal(t, "Azúcar", cat.products[1].title)
}

func TestParseCatalog_ReportaTodasLasLineasInvalidas(t *testing.T) {
	src := "proveedor;Sin INN\nproducto;Harina;abc;1\nservicio;x;y\n"
	_, err := parseCatalog(strings.NewReader(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "línea 1")
	assert.Contains(t, err.Error(), "línea 2")
	assert.Contains(t, err.Error(), "línea 3")
}

func TestDecoderFor_Desconocida(t *testing.T) {
	_, err := decoderFor(strings.NewReader(""), "ebcdic")
	assert.Error(t, err)
}
