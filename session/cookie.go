package session

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// CookieName is the cookie carrying the serialized session.
const CookieName = "session"

// epochZero is the clear-form Expires value browsers treat as "delete now".
const epochZero = "Thu, 01 Jan 1970 00:00:00 GMT"

// CredentialBuilder assembles a Set-Cookie credential string from the
// recognized delivery flags. Attributes are emitted in the order they are
// applied, joined by "; ", so callers control the exact wire layout.
type CredentialBuilder struct {
	name  string
	value string
	attrs []string
}

// NewCredential starts a credential for the given cookie name and payload.
func NewCredential(name, value string) *CredentialBuilder {
	return &CredentialBuilder{name: name, value: value}
}

// HttpOnly marks the credential unreadable by page scripts.
func (b *CredentialBuilder) HttpOnly() *CredentialBuilder {
	b.attrs = append(b.attrs, "HttpOnly")
	return b
}

// Secure restricts delivery to encrypted channels.
func (b *CredentialBuilder) Secure() *CredentialBuilder {
	b.attrs = append(b.attrs, "Secure")
	return b
}

// SameSite sets the same-site delivery mode ("Lax", "Strict", "None").
func (b *CredentialBuilder) SameSite(mode string) *CredentialBuilder {
	b.attrs = append(b.attrs, "SameSite="+mode)
	return b
}

// MaxAge sets the credential lifetime in seconds.
func (b *CredentialBuilder) MaxAge(seconds int) *CredentialBuilder {
	b.attrs = append(b.attrs, "Max-Age="+strconv.Itoa(seconds))
	return b
}

// Path sets the credential's scope path.
func (b *CredentialBuilder) Path(path string) *CredentialBuilder {
	b.attrs = append(b.attrs, "Path="+path)
	return b
}

// ExpireImmediately sets the epoch-zero Expires attribute that clears an
// existing credential.
func (b *CredentialBuilder) ExpireImmediately() *CredentialBuilder {
	b.attrs = append(b.attrs, "Expires="+epochZero)
	return b
}

// String renders the full credential string.
func (b *CredentialBuilder) String() string {
	segments := append([]string{b.name + "=" + b.value}, b.attrs...)
	return strings.Join(segments, "; ")
}

// Serialize produces the complete transport credential for a session:
// the JSON payload plus delivery flags. Secure is emitted only when the
// service runs in a production environment. Max-Age is pinned to the
// default TTL by wire contract; the JSON expiresAt stays authoritative.
func Serialize(s *Session, production bool) string {
	payload, err := json.Marshal(s)
	if err != nil {
		// Session marshals from plain fields; this cannot fail in practice.
		payload = []byte("{}")
	}
	b := NewCredential(CookieName, string(payload)).HttpOnly()
	if production {
		b.Secure()
	}
	return b.SameSite("Lax").
		MaxAge(int(DefaultTTL / time.Second)).
		Path("/").
		String()
}

// ClearCredential returns the fixed credential string that instructs the
// client to drop any existing session cookie.
func ClearCredential() string {
	return NewCredential(CookieName, "").
		Path("/").
		ExpireImmediately().
		HttpOnly().
		SameSite("Lax").
		String()
}

// Parse decodes a raw credential payload into a Session without filtering
// for validity. The gate uses it to tell malformed payloads apart from
// merely expired ones; everything else should call Deserialize.
func Parse(payload string) (*Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Deserialize is total: it returns the parsed session only when the payload
// is well-formed JSON of the session shape AND the session passes IsValid.
// Malformed, truncated, or expired payloads all come back nil.
func Deserialize(payload string) *Session {
	s, err := Parse(payload)
	if err != nil {
		return nil
	}
	if !IsValid(s) {
		return nil
	}
	return s
}

// CredentialFromCookieHeader extracts the raw session payload from a Cookie
// request header. The payload is raw JSON, which net/http's cookie parser
// would reject, so the header is scanned directly. JSON contains no "; "
// sequence, making the segment split safe.
func CredentialFromCookieHeader(header string) (string, bool) {
	for _, segment := range strings.Split(header, "; ") {
		segment = strings.TrimLeft(segment, " ")
		if value, found := strings.CutPrefix(segment, CookieName+"="); found {
			return value, value != ""
		}
	}
	return "", false
}
