package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Tipos de fila del catálogo.
const (
	rowSupplier = "proveedor"
	rowProduct  = "producto"
)

// catalog filas ya parseadas, listas para crear vía casos de uso.
type catalog struct {
	suppliers []supplierRow
	products  []productRow
}

type supplierRow struct {
	line  int
	title string
	inn   string
}

type productRow struct {
	line          int
	title         string
	purchasePrice decimal.Decimal
	salePrice     decimal.Decimal
}

// decoderFor envuelve r según la codificación del archivo (utf-8 o latin1).
func decoderFor(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("codificación no soportada %q", encoding)
	}
}

// parseCatalog lee un CSV separado por ';' con columnas:
//
//	proveedor;<título>;<inn>
//	producto;<título>;<precio_compra>;<precio_venta>
//
// Líneas vacías y las que empiezan con '#' se ignoran.
func parseCatalog(r io.Reader) (*catalog, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	out := &catalog{}
	var errs []error
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leer CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)
		kind := strings.ToLower(strings.TrimSpace(rec[0]))
		switch kind {
		case rowSupplier:
			if len(rec) < 3 {
				errs = append(errs, fmt.Errorf("línea %d: proveedor requiere título e inn", line))
				continue
			}
			out.suppliers = append(out.suppliers, supplierRow{line: line, title: strings.TrimSpace(rec[1]), inn: strings.TrimSpace(rec[2])})
		case rowProduct:
			if len(rec) < 4 {
				errs = append(errs, fmt.Errorf("línea %d: producto requiere título y precios", line))
				continue
			}
			purchase, err1 := decimal.NewFromString(normalizeDecimal(rec[2]))
			sale, err2 := decimal.NewFromString(normalizeDecimal(rec[3]))
			if err := errors.Join(err1, err2); err != nil {
				errs = append(errs, fmt.Errorf("línea %d: precio inválido: %w", line, err))
				continue
			}
			out.products = append(out.products, productRow{line: line, title: strings.TrimSpace(rec[1]), purchasePrice: purchase, salePrice: sale})
		default:
			errs = append(errs, fmt.Errorf("línea %d: tipo de fila desconocido %q", line, rec[0]))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// normalizeDecimal acepta coma decimal ("10,50").
func normalizeDecimal(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
}
