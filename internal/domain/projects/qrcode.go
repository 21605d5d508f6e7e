package projects

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	nonCode   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)
)

const maxCodeBase = 32

// MakeQRCode builds the public guest code for a project.
// Example: "Anna & Tom" -> "anna-tom-3f9c1a2b"
func MakeQRCode(title string) string {
	base := strings.ToLower(strings.TrimSpace(title))
	base = strings.ReplaceAll(base, " ", "-")
	base = nonCode.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if len(base) > maxCodeBase {
		base = strings.TrimRight(base[:maxCodeBase], "-")
	}
	if base == "" {
		base = "event"
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return base + "-" + suffix
}

// GuestURL is the link encoded into the printed QR code.
func GuestURL(appURL, code string) string {
	return strings.TrimRight(appURL, "/") + "/guest/" + code
}

// ShareURL is the public page for a shared project.
func ShareURL(appURL, projectID string) string {
	return strings.TrimRight(appURL, "/") + "/share/" + projectID
}
