package client

import (
	"context"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formchat/api"
)

// ShareLink returns the respondent URL of a published form:
// {frontend}/view/form/{publicID}.
func ShareLink(frontendURL, publicID string) string {
	base := strings.TrimRight(strings.TrimSpace(frontendURL), "/")
	return base + "/view/form/" + url.PathEscape(publicID)
}

// Contract returns the validated collaborator contract the client is built
// against.
func Contract(ctx context.Context) (*openapi3.T, error) {
	return api.Load(ctx)
}
