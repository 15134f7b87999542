// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Public
	"Health":       SecurityPublic,
	"QuotePricing": SecurityPublic,

	// Bookings - Access Protected
	"RequestBooking":       SecurityAccess,
	"ListBookings":         SecurityAccess,
	"GetBooking":           SecurityAccess,
	"AcceptBooking":        SecurityAccess,
	"RecordPayment":        SecurityAccess,
	"RecordPaymentFailure": SecurityAccess,
	"ConfirmPickup":        SecurityAccess,
	"ConfirmReturn":        SecurityAccess,
	"CompleteBooking":      SecurityAccess,
	"CancelBooking":        SecurityAccess,
	"ReportIssue":          SecurityAccess,
	"OpenDispute":          SecurityAccess,

	// Availability - Access Protected
	"CheckAvailability": SecurityAccess,
	"BlockDates":        SecurityAccess,
	"UnblockDates":      SecurityAccess,

	// Ledger & notifications - Access Protected
	"ListTransactions":     SecurityAccess,
	"ListNotifications":    SecurityAccess,
	"MarkNotificationRead": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
