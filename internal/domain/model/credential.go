package model

// Credentials holds the Earthdata Login username/password pair used to
// request a bearer token. Values are read from the parameter store at
// invocation time and live only for the duration of the run; they are never
// persisted or logged by this service.
type Credentials struct {
	Username string
	Password string
}
