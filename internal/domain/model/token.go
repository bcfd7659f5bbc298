package model

// Token is a bearer token issued by Earthdata Login. Immutable once issued;
// it is written once to the secret store and superseded (not deleted) by the
// next scheduled rotation before the provider-side 60 day expiry.
type Token struct {
	AccessToken string
	Environment Environment
}
