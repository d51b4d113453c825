package http_test

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/docs"
)

var pathParam = regexp.MustCompile(`:([A-Za-z]+)`)

// Cada ruta de /api debe figurar en swagger.json con su método.
func TestDocs_CubreTodasLasRutas(t *testing.T) {
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))

	api := newTestAPI(t)
	checked := 0
	for _, route := range api.app.GetRoutes(true) {
		if !strings.HasPrefix(route.Path, "/api/") {
			continue
		}
		method := strings.ToLower(route.Method)
		if method != "get" && method != "post" && method != "put" {
			continue
		}
		path := pathParam.ReplaceAllString(strings.TrimSuffix(route.Path, "/"), "{$1}")
		ops, ok := doc.Paths[path]
		if assert.True(t, ok, "ruta sin documentar: %s", path) {
			assert.Contains(t, ops, method, "%s %s sin documentar", route.Method, path)
		}
		checked++
	}
	assert.GreaterOrEqual(t, checked, 13)
}
