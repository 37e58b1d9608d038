package apiv1

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The served document must stay a valid OpenAPI 3 spec and keep covering the
// routes RegisterHandlers wires up.
func TestOpenAPIDocumentIsValid(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile("../../../public/docs/v1/openapi.yml")
	require.NoError(t, err)

	require.NoError(t, doc.Validate(loader.Context))

	for _, path := range []string{
		"/ping",
		"/user/profile",
		"/user/entitlement",
		"/habits",
		"/habits/{id}/checkin",
	} {
		assert.NotNil(t, doc.Paths.Find(path), "path %s missing from openapi.yml", path)
	}
}
