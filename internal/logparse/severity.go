package logparse

// SeverityForStatus maps an HTTP status code to a log severity level.
// Server errors are ERROR, client errors WARN, everything else INFO.
func SeverityForStatus(code int) string {
	switch {
	case code >= 500:
		return "ERROR"
	case code >= 400:
		return "WARN"
	default:
		return "INFO"
	}
}

// StatusClass returns the class label of a status code, such as "2xx".
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return string(rune('0'+code/100)) + "xx"
}
