package masking

// DefaultSecretFieldNames are the substrings that mark a field name as secret.
//
//nolint:gochecknoglobals // read-only defaults.
var DefaultSecretFieldNames = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"api_key",
	"apikey",
	"api_secret",
	"access_key",
	"private_key",
	"auth",
	"credential",
}

// Options control how values are redacted.
type Options struct {
	MaskChar                string   `default:"*" validate:"len=1"`
	MinVisibleChars         int      `default:"2" validate:"gte=1"`
	MinLengthForPartialMask int      `default:"5" validate:"gte=1"`
	FixedMaskLength         int      `default:"5" validate:"gte=1"`
	MinHeuristicLength      int      `default:"8" validate:"gte=1"`
	SecretFieldNames        []string `default:"password,passwd,secret,token,api_key,apikey,api_secret,access_key,private_key,auth,credential"`
	// MaskSecrets turns redaction of trees, lines and reports off when false.
	MaskSecrets bool `default:"true"`
}

// DefaultOptions returns the built-in masking options.
func DefaultOptions() Options {
	return Options{
		MaskChar:                "*",
		MinVisibleChars:         2,
		MinLengthForPartialMask: 5,
		FixedMaskLength:         5,
		MinHeuristicLength:      8,
		SecretFieldNames:        append([]string(nil), DefaultSecretFieldNames...),
		MaskSecrets:             true,
	}
}
