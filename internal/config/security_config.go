package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Any operator access token
	SecurityAdmin                       // Access token with the admin role
)

const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// EndpointSecurityConfig maps "METHOD route-template" to its required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Public
	"GET /healthz":            SecurityPublic,
	"POST /api/v1/auth/token": SecurityPublic,

	// Spaces
	"GET /api/v1/spaces":      SecurityAccess,
	"GET /api/v1/spaces/{id}": SecurityAccess,
	"POST /api/v1/spaces":     SecurityAdmin,

	// Users
	"POST /api/v1/users":                 SecurityAccess,
	"GET /api/v1/users/{id}":             SecurityAccess,
	"PUT /api/v1/users/{id}":             SecurityAccess,
	"DELETE /api/v1/users/{id}":          SecurityAdmin,
	"POST /api/v1/users/{id}/deactivate": SecurityAccess,
	"POST /api/v1/users/{id}/reactivate": SecurityAdmin,
	"GET /api/v1/users/{id}/payments":    SecurityAccess,

	// Reservations
	"POST /api/v1/reservations":              SecurityAccess,
	"GET /api/v1/reservations":               SecurityAccess,
	"GET /api/v1/reservations/{id}":          SecurityAccess,
	"POST /api/v1/reservations/{id}/release": SecurityAccess,

	// Billing
	"GET /api/v1/payments/pending":   SecurityAccess,
	"POST /api/v1/payments/{id}/pay": SecurityAccess,
	"GET /api/v1/occupancy":          SecurityAccess,
}

// GetEndpointSecurity returns the security level for a route. Unknown routes
// require admin access.
func GetEndpointSecurity(method, route string) SecurityLevel {
	if level, ok := EndpointSecurityConfig[method+" "+route]; ok {
		return level
	}
	return SecurityAdmin
}
