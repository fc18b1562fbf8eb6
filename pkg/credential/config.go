package credential

type Config struct {
	JWTSecret string `env:"AUTH_JWT_SECRET,required"` // JWTSecret is the HS256 signing key.
	Issuer    string `env:"AUTH_JWT_ISSUER"`          // Issuer, when set, must match the iss claim.
	Audience  string `env:"AUTH_JWT_AUDIENCE"`        // Audience, when set, must be in the aud claim.
}

// NewJWTResolverFromConfig builds a JWTResolver from cfg.
func NewJWTResolverFromConfig(cfg Config) (*JWTResolver, error) {
	return NewJWTResolver(cfg.JWTSecret, WithIssuer(cfg.Issuer), WithAudience(cfg.Audience))
}
