package auth

import "time"

// Config holds authentication settings. JWTSecret has no default and must
// be provided by the environment.
type Config struct {
	JWTSecret            string        `env:"JWT_SECRET,required"`
	AccessTokenTTL       time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	ConfirmationTokenTTL time.Duration `env:"CONFIRMATION_TOKEN_TTL" envDefault:"24h"`
	BcryptCost           int           `env:"BCRYPT_COST" envDefault:"10"`
}
