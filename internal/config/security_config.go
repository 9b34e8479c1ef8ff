package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAdmin                       // Admin access token required
)

// EndpointSecurityConfig maps gRPC methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	"/grpc.health.v1.Health/Check": SecurityPublic,

	// NavigationMenuAdmin - Admin Protected
	"/journal.admin.v1.NavigationMenuAdmin/InstallNavigationMenus":         SecurityAdmin,
	"/journal.admin.v1.NavigationMenuAdmin/GetNavigationMenu":              SecurityAdmin,
	"/journal.admin.v1.NavigationMenuAdmin/DispatchRegistrationInvitation": SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
