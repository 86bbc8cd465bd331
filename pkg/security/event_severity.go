package security

// Severity is derived from the EventType, never supplied by callers.
type Severity string

const (
	SeverityINFO Severity = "INFO"
	SeverityWARN Severity = "WARN"
	SeverityHIGH Severity = "HIGH"
)

// EventSeverityMap defines the fixed severity of each event type.
var EventSeverityMap = map[EventType]Severity{
	EventSignInSuccess:  SeverityINFO,
	EventSignUp:         SeverityINFO,
	EventSignOut:        SeverityINFO,
	EventSessionExpired: SeverityINFO,

	EventSignInFailed:       SeverityWARN,
	EventRateLimitTriggered: SeverityWARN,

	EventSignInBlocked: SeverityHIGH,
	EventCSRFViolation: SeverityHIGH,
}

// GetSeverity returns the severity for an event type, WARN when unmapped.
func GetSeverity(eventType EventType) Severity {
	if severity, ok := EventSeverityMap[eventType]; ok {
		return severity
	}
	return SeverityWARN
}

// IsHighOrAbove reports whether the event needs attention from an operator.
func IsHighOrAbove(eventType EventType) bool {
	return GetSeverity(eventType) == SeverityHIGH
}
