package docs

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerInfoBasic(t *testing.T) {
	require.NotNil(t, SwaggerInfo)
	assert.NotEmpty(t, SwaggerInfo.Title)
	assert.True(t, strings.Contains(SwaggerInfo.SwaggerTemplate, "paths"))
}

func TestRenderedDocIsValidJSON(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		BasePath string                            `json:"basePath"`
		Paths    map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "/api", doc.BasePath)
	assert.Contains(t, doc.Paths, "/bookings/{id}/status")
	assert.Contains(t, doc.Paths["/services/{id}"], "delete")
}
