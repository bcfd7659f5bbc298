package edl

import "github.com/podaac/generate-token-creator/internal/domain/model"

// Earthdata Login user token REST paths, identical in every environment.
const (
	tokenPath  = "/api/users/token"
	tokensPath = "/api/users/tokens"
	revokePath = "/api/users/revoke_token"
)

// Endpoints holds the Earthdata Login base URL for each environment.
type Endpoints struct {
	Production    string
	NonProduction string
}

// BaseURL returns the base URL serving env.
func (e Endpoints) BaseURL(env model.Environment) string {
	if env == model.EnvironmentNonProduction {
		return e.NonProduction
	}
	return e.Production
}
