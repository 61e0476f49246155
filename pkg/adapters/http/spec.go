package http

import (
	_ "embed"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiSpec []byte

var (
	swaggerOnce sync.Once
	swaggerDoc  *openapi3.T
	swaggerErr  error
)

// rawSpec returns the embedded OpenAPI document.
func rawSpec() ([]byte, error) {
	return openapiSpec, nil
}

// GetSwagger parses the embedded OpenAPI document. The result is cached.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		swaggerDoc, swaggerErr = openapi3.NewLoader().LoadFromData(openapiSpec)
	})
	return swaggerDoc, swaggerErr
}
