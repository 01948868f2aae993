// Package authtest provides a fake identity provider for tests.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// DefaultKeyID is the kid of the key every Issuer starts with
const DefaultKeyID = "key-1"

// Audience is the API audience used by tests
const Audience = "https://coffeeshop-api/v1"

type publishedKey struct {
	kid  string
	priv *rsa.PrivateKey
}

// Issuer is an HTTPS server publishing a JSON Web Key Set and an OpenID configuration
type Issuer struct {
	Server *httptest.Server

	mu      sync.Mutex
	keys    []publishedKey
	failing bool
	hits    int
}

// NewIssuer starts an issuer publishing one RSA key under DefaultKeyID
func NewIssuer(t testing.TB) *Issuer {
	t.Helper()

	iss := &Issuer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/jwks.json", iss.serveKeySet)
	mux.HandleFunc("/.well-known/openid-configuration", iss.serveDiscovery)
	iss.Server = httptest.NewTLSServer(mux)
	t.Cleanup(iss.Server.Close)

	iss.AddKey(t, DefaultKeyID)
	return iss
}

// Domain is the host:port the issuer is reachable at
func (i *Issuer) Domain() string {
	return strings.TrimPrefix(i.Server.URL, "https://")
}

// URL is the issuer identifier, the exact "iss" claim value
func (i *Issuer) URL() string {
	return i.Server.URL + "/"
}

// KeySetURL is the location of the published key set
func (i *Issuer) KeySetURL() string {
	return i.Server.URL + "/.well-known/jwks.json"
}

// Client returns an HTTP client trusting the issuer's certificate
func (i *Issuer) Client() *http.Client {
	return i.Server.Client()
}

// AddKey generates and publishes a new RSA key under kid
func (i *Issuer) AddKey(t testing.TB, kid string) *rsa.PrivateKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	i.mu.Lock()
	i.keys = append(i.keys, publishedKey{kid: kid, priv: priv})
	i.mu.Unlock()
	return priv
}

// PrependKey publishes priv under kid ahead of every other key
func (i *Issuer) PrependKey(kid string, priv *rsa.PrivateKey) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.keys = append([]publishedKey{{kid: kid, priv: priv}}, i.keys...)
}

// RemoveKeys stops publishing every key with the given kid
func (i *Issuer) RemoveKeys(kid string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	kept := i.keys[:0]
	for _, k := range i.keys {
		if k.kid != kid {
			kept = append(kept, k)
		}
	}
	i.keys = kept
}

// SetFailing makes the key set endpoint answer 500
func (i *Issuer) SetFailing(failing bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.failing = failing
}

// Hits is the number of key set requests served
func (i *Issuer) Hits() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.hits
}

// Claims returns a valid claim set for this issuer granting permissions
func (i *Issuer) Claims(permissions ...string) jwt.MapClaims {
	now := time.Now()
	perms := make([]any, 0, len(permissions))
	for _, p := range permissions {
		perms = append(perms, p)
	}
	return jwt.MapClaims{
		"iss":         i.URL(),
		"sub":         "auth0|barista",
		"aud":         Audience,
		"iat":         now.Unix(),
		"exp":         now.Add(time.Hour).Unix(),
		"permissions": perms,
	}
}

// Token signs claims with the first key published under DefaultKeyID
func (i *Issuer) Token(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	return i.Sign(t, DefaultKeyID, claims)
}

// Sign signs claims with the last key added under kid and sets kid in the header
func (i *Issuer) Sign(t testing.TB, kid string, claims jwt.MapClaims) string {
	t.Helper()
	i.mu.Lock()
	var priv *rsa.PrivateKey
	for _, k := range i.keys {
		if k.kid == kid {
			priv = k.priv
		}
	}
	i.mu.Unlock()
	if priv == nil {
		t.Fatalf("no key published under kid %q", kid)
	}
	return SignWith(t, priv, kid, claims)
}

// SignWith signs claims with priv using RS256. An empty kid leaves the header without one.
func SignWith(t testing.TB, priv *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(priv)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (i *Issuer) serveKeySet(w http.ResponseWriter, _ *http.Request) {
	i.mu.Lock()
	i.hits++
	failing := i.failing
	keys := append([]publishedKey(nil), i.keys...)
	i.mu.Unlock()

	if failing {
		http.Error(w, "upstream unavailable", http.StatusInternalServerError)
		return
	}

	set := jwk.NewSet()
	for _, k := range keys {
		key, err := jwk.FromRaw(&k.priv.PublicKey)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = key.Set(jwk.KeyIDKey, k.kid)
		_ = key.Set(jwk.AlgorithmKey, jwa.RS256)
		_ = key.Set(jwk.KeyUsageKey, "sig")
		_ = set.AddKey(key)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(set)
}

func (i *Issuer) serveDiscovery(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"issuer":                                i.URL(),
		"authorization_endpoint":                i.URL() + "authorize",
		"token_endpoint":                        i.URL() + "oauth/token",
		"jwks_uri":                              i.KeySetURL(),
		"id_token_signing_alg_values_supported": []string{"RS256"},
	})
}
