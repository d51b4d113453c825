package dto

import (
	"bytes"
	"encoding/json"
)

// QuantityField cantidad tal como llega en el JSON: número, texto o null.
// Se conserva como texto; la validación y conversión la hace el dominio.
type QuantityField string

// UnmarshalJSON acepta 3, "3", "" y null.
func (q *QuantityField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*q = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = QuantityField(s)
	default:
		// Números y cualquier otro literal se guardan tal cual; el dominio rechaza lo que no sea entero.
		*q = QuantityField(data)
	}
	return nil
}
