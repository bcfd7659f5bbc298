package model

import "strings"

// Environment identifies which Earthdata Login deployment a token is issued
// against. The UAT deployment serves both the SIT and UAT venues.
type Environment string

const (
	EnvironmentProduction    Environment = "production"
	EnvironmentNonProduction Environment = "non-production"
)

// EnvironmentForPrefix derives the target environment from a deployment
// prefix. Prefixes ending in "-sit" or "-uat" route to the non-production
// deployment; everything else routes to production.
func EnvironmentForPrefix(prefix string) Environment {
	if strings.HasSuffix(prefix, "-sit") || strings.HasSuffix(prefix, "-uat") {
		return EnvironmentNonProduction
	}
	return EnvironmentProduction
}
