package gomanage

import (
	"fmt"
	"strings"
)

// SessionCookieName is the cookie the PASOE login handshake issues.
const SessionCookieName = "JSESSIONID"

// ExtractSessionCookie finds the named cookie in a Set-Cookie header list
// and returns it as a ready-to-send "NAME=value" pair. Absence is an
// explicit error, never an empty string.
func ExtractSessionCookie(setCookie []string, name string) (string, error) {
	for _, header := range setCookie {
		for _, part := range strings.Split(header, ";") {
			part = strings.TrimSpace(part)
			value, ok := strings.CutPrefix(part, name+"=")
			if !ok || value == "" {
				continue
			}
			return name + "=" + value, nil
		}
	}
	return "", fmt.Errorf("cookie %s not present in Set-Cookie headers", name)
}
