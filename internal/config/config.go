package config // package config loads application configuration from environment variables

import (
    "log"     // log reports configuration errors and halts execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings splits list-valued variables
    "time"    // time parses duration-valued variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Strings are used for identifiers and secrets,
// ints for durations and costs, and slices for list-valued settings such as
// the e-mail verification domain allow-list.
type Config struct {
    Env            string        // application environment (e.g. "dev", "prod")
    Port           string        // HTTP port to listen on
    DBUser         string        // database username
    DBPass         string        // database password (optional)
    DBHost         string        // database host address
    DBPort         string        // database port number
    DBName         string        // database name
    JWTSecret      string        // secret used to sign JWTs
    AccessTTLMin   int           // access token time-to-live in minutes
    RefreshTTLDays int           // refresh token time-to-live in days
    BcryptCost     int           // bcrypt cost for password hashing
    UploadTimeout  time.Duration // upper bound on a single evidence upload
    UploadFolder   string        // object store folder prefix for evidence files
    CloudName      string        // cloudinary cloud name (optional; uploads disabled when empty)
    CloudAPIKey    string        // cloudinary API key
    CloudAPISecret string        // cloudinary API secret
    EmailCodeTTL   time.Duration // lifetime of an e-mail verification code
    EmailDomains   []string      // allowed sender domains for EMAIL evidence
    FeedWindow     time.Duration // recency window for the home feed
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty password allowed
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),
        UploadTimeout:  dur("UPLOAD_TIMEOUT", 30*time.Second),
        UploadFolder:   str("UPLOAD_FOLDER", "plan-prove/evidence"),
        CloudName:      os.Getenv("CLOUDINARY_CLOUD_NAME"),
        CloudAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
        CloudAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
        EmailCodeTTL:   dur("EMAIL_CODE_TTL", 10*time.Minute),
        EmailDomains:   list("EMAIL_ALLOWED_DOMAINS"),
        FeedWindow:     dur("FEED_WINDOW", 48*time.Hour),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// str returns the value of an optional environment variable or a default.
func str(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// dur parses an optional duration-valued variable, falling back to a default
// when the variable is unset or malformed.
func dur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    d, err := time.ParseDuration(v)
    if err != nil {
        log.Printf("config: invalid duration for %s: %q, using %s", key, v, def)
        return def
    }
    return d
}

// list splits a comma-separated variable into trimmed, lower-cased values.
// An unset variable yields an empty slice; for the e-mail domain
// allow-list that means the channel stays disabled (fail closed).
func list(key string) []string {
    raw := os.Getenv(key)
    if raw == "" {
        return nil
    }
    parts := strings.Split(raw, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.ToLower(strings.TrimSpace(p))
        if p != "" {
            out = append(out, p)
        }
    }
    return out
}
