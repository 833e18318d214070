package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"fitcoach/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

var pathParam = regexp.MustCompile(`:(\w+)`)

type swaggerDoc struct {
	Paths       map[string]map[string]json.RawMessage `json:"paths"`
	Definitions map[string]json.RawMessage            `json:"definitions"`
}

func readSwaggerDoc(t *testing.T) swaggerDoc {
	t.Helper()
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestSwaggerDoc_CoversRegisteredRoutes(t *testing.T) {
	doc := readSwaggerDoc(t)

	routes := routesOnly(t).Routes()
	require.NotEmpty(t, routes)
	for _, rt := range routes {
		path := pathParam.ReplaceAllString(rt.Path, "{$1}")
		ops, ok := doc.Paths[path]
		if !assert.Truef(t, ok, "%s is not documented", path) {
			continue
		}
		assert.Containsf(t, ops, strings.ToLower(rt.Method), "%s %s is not documented", rt.Method, path)
	}

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		assert.Contains(t, doc.Paths, path)
	}
}

func TestSwaggerDoc_DefinitionsResolve(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)
	doc := readSwaggerDoc(t)

	refs := regexp.MustCompile(`"#/definitions/([^"]+)"`).FindAllStringSubmatch(raw, -1)
	require.NotEmpty(t, refs)
	for _, ref := range refs {
		assert.Containsf(t, doc.Definitions, ref[1], "dangling reference %s", ref[1])
	}
	assert.Contains(t, doc.Definitions, "api.ListResponse-program_Program")
	assert.Contains(t, doc.Definitions, "clientprogram.Effective")
}

func TestSetupSwagger_ServesDoc(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupSwagger(r)

	w := testutil.DoJSON(r, http.MethodGet, "/swagger/doc.json", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/api/client-programs/{id}/schedule/weekly"`)
}
