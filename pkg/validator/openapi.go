package validator

import (
	"fmt"
	"sync"

	apperrors "waifuhub/backend/pkg/errors"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
)

// OpenAPIValidator checks incoming requests against an OpenAPI document.
// It is optional; the router only mounts it when OPENAPI_SCHEMA_PATH is set.
type OpenAPIValidator struct {
	mu         sync.RWMutex
	router     routers.Router
	schemaPath string
}

func NewOpenAPIValidator(schemaPath string) (*OpenAPIValidator, error) {
	router, err := buildRouter(schemaPath)
	if err != nil {
		return nil, err
	}
	return &OpenAPIValidator{router: router, schemaPath: schemaPath}, nil
}

func buildRouter(path string) (routers.Router, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document %s: %w", path, err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("openapi document %s: %w", path, err)
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return router, nil
}

// ReloadSchema swaps in a freshly parsed document. The old one stays active
// when the reload fails.
func (v *OpenAPIValidator) ReloadSchema() error {
	router, err := buildRouter(v.schemaPath)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.router = router
	v.mu.Unlock()
	return nil
}

// Middleware validates the request body and parameters against the document.
// Routes the document does not describe pass through untouched; violations
// surface as validation errors through the shared error middleware.
func (v *OpenAPIValidator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		v.mu.RLock()
		router := v.router
		v.mu.RUnlock()

		route, pathParams, err := router.FindRoute(c.Request)
		if err != nil {
			c.Next()
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}

		if err := openapi3filter.ValidateRequest(c.Request.Context(), input); err != nil {
			_ = c.Error(apperrors.NewValidation(fmt.Sprintf("request does not match schema: %v", err)))
			c.Abort()
			return
		}

		c.Next()
	}
}
