package inventory

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

// Prefijos de los documentos generados por el libro.
const (
	OrderPrefix  = "ORD"
	ReturnPrefix = "RET"
)

const suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DocumentNumber genera PREFIJO-YYYYMMDDHHMMSS-XXXX con un sufijo aleatorio de 4 caracteres.
// El índice único en base de datos detecta la colisión; el caso de uso regenera.
func DocumentNumber(prefix string, now time.Time) (string, error) {
	return documentNumber(prefix, now, rand.Reader)
}

func documentNumber(prefix string, now time.Time, rnd io.Reader) (string, error) {
	suffix := make([]byte, 4)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rnd, max)
		if err != nil {
			return "", fmt.Errorf("document number: %w", err)
		}
		suffix[i] = suffixAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102150405"), suffix), nil
}
