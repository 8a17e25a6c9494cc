package respond

import (
	"regexp"
)

var (
	// bcrypt hashes ($2a$, $2b$, $2y$)
	bcryptHashPattern = regexp.MustCompile(`\$2[aby]?\$\d{2}\$[./A-Za-z0-9]{53}`)

	// JWTs: three base64url segments, the first starting with eyJ
	jwtPattern = regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)

	// Passwords inside DSNs
	dbPasswordPattern = regexp.MustCompile(`://([^:/@]+):([^@]+)@`)
)

// SanitizeError returns the error message with credentials masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = bcryptHashPattern.ReplaceAllString(msg, "$$2*$$****")
	msg = jwtPattern.ReplaceAllString(msg, "eyJ****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")

	return msg
}
