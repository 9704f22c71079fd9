package mockapi

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/gin-gonic/gin"
)

const userKey = "mockapi.user"

// newContractRouter routes on paths alone; the contract's server URL names
// the production host, which never matches a local listener.
func newContractRouter(doc *openapi3.T) (routers.Router, error) {
	doc.Servers = nil
	return legacy.NewRouter(doc, openapi3.DisableExamplesValidation())
}

// contract validates every request under the base path against the OpenAPI
// document and enforces bearer auth on operations that declare it.
func (s *Server) contract() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := c.Request
		var body []byte
		if req.Body != nil {
			data, err := io.ReadAll(req.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
				return
			}
			body = data
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		probe := req.Clone(req.Context())
		probe.URL.Path = strings.TrimPrefix(req.URL.Path, s.basePath)
		probe.URL.RawPath = ""
		probe.Body = io.NopCloser(bytes.NewReader(body))

		route, params, err := s.router.FindRoute(probe)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    probe,
			PathParams: params,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
			s.logger.Debug().Err(err).Str("operation", route.Operation.OperationID).Msg("request rejected by contract")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if requiresAuth(route) {
			token := bearerToken(req.Header.Get("Authorization"))
			if token == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
				return
			}
			user, err := s.store.UserByToken(req.Context(), token)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid bearer token"})
				return
			}
			c.Set(userKey, user)
		}
		c.Next()
	}
}

func requiresAuth(route *routers.Route) bool {
	if route.Operation != nil && route.Operation.Security != nil {
		return len(*route.Operation.Security) > 0
	}
	return len(route.Spec.Security) > 0
}

func currentUser(c *gin.Context) (User, bool) {
	value, ok := c.Get(userKey)
	if !ok {
		return User{}, false
	}
	user, ok := value.(User)
	return user, ok
}
