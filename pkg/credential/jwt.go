package credential

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims understood by JWTResolver.
type Claims struct {
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenExtractor pulls a raw token out of a request. It returns ErrNoCredential
// when the request has none.
type TokenExtractor func(r *http.Request) (string, error)

// BearerTokenExtractor reads "Authorization: Bearer <token>".
func BearerTokenExtractor(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", ErrNoCredential
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: malformed authorization header", ErrInvalidCredential)
	}
	return strings.TrimSpace(token), nil
}

// JWTResolver authenticates HS256 bearer tokens.
type JWTResolver struct {
	key       []byte
	parser    *jwt.Parser
	extractor TokenExtractor
	issuer    string
}

type JWTOption func(*jwtOptions)

type jwtOptions struct {
	issuer    string
	audience  string
	leeway    time.Duration
	extractor TokenExtractor
}

func WithIssuer(iss string) JWTOption {
	return func(o *jwtOptions) { o.issuer = iss }
}

func WithAudience(aud string) JWTOption {
	return func(o *jwtOptions) { o.audience = aud }
}

func WithLeeway(d time.Duration) JWTOption {
	return func(o *jwtOptions) { o.leeway = d }
}

func WithExtractor(fn TokenExtractor) JWTOption {
	return func(o *jwtOptions) {
		if fn != nil {
			o.extractor = fn
		}
	}
}

func NewJWTResolver(secret string, opts ...JWTOption) (*JWTResolver, error) {
	if secret == "" {
		return nil, ErrMissingSigningKey
	}
	o := jwtOptions{extractor: BearerTokenExtractor}
	for _, opt := range opts {
		opt(&o)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(o.leeway),
	}
	if o.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(o.issuer))
	}
	if o.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(o.audience))
	}

	return &JWTResolver{
		key:       []byte(secret),
		parser:    jwt.NewParser(parserOpts...),
		extractor: o.extractor,
		issuer:    o.issuer,
	}, nil
}

func (j *JWTResolver) Resolve(r *http.Request) (*Credential, error) {
	raw, err := j.extractor(r)
	if err != nil {
		return nil, err
	}

	var claims Claims
	_, err = j.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return j.key, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidCredential, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrInvalidCredential)
	}

	ref := Fingerprint("jwt", raw)
	if claims.ID != "" {
		ref = "jwt:" + claims.ID
	}
	return &Credential{
		Subject:  claims.Subject,
		TenantID: claims.TenantID,
		Role:     claims.Role,
		Ref:      ref,
	}, nil
}

// Issue signs claims, filling the issuer and expiry when unset. It backs
// operator tooling and tests.
func (j *JWTResolver) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	if claims.Issuer == "" {
		claims.Issuer = j.issuer
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.key)
}
