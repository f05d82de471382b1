package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
    if cfg == nil { return }

    setString := func(dst *string, keys ...string) {
        if *dst != "" { return }
        for _, k := range keys {
            if v := strings.TrimSpace(os.Getenv(k)); v != "" {
                *dst = v
                return
            }
        }
    }
    setString(&cfg.ConfigPath, "DIGEST_CONFIG")
    setString(&cfg.TablesPath, "DIGEST_TABLES")
    setString(&cfg.DBPath, "DIGEST_DB")
    setString(&cfg.CacheDir, "DIGEST_CACHE_DIR", "CACHE_DIR")
    setString(&cfg.UserAgent, "DIGEST_USER_AGENT")

    if len(cfg.Feeds) == 0 {
        cfg.Feeds = ParseFeeds(os.Getenv("DIGEST_FEEDS"))
    }
    if len(cfg.TopicOrder) == 0 {
        cfg.TopicOrder = SplitList(os.Getenv("DIGEST_TOPICS"))
    }

    if cfg.CacheMaxAge == 0 {
        if s := os.Getenv("CACHE_MAX_AGE"); s != "" {
            if d, err := time.ParseDuration(s); err == nil {
                cfg.CacheMaxAge = d
            }
        }
    }
    if cfg.Rate == 0 {
        if s := os.Getenv("DIGEST_RATE"); s != "" {
            if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
                cfg.Rate = f
            }
        }
    }

    setBool := func(dst *bool, envKey string) {
        if *dst { return }
        switch strings.ToLower(strings.TrimSpace(os.Getenv(envKey))) {
        case "1", "true", "yes", "on":
            *dst = true
        }
    }
    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.SkipSeen, "DIGEST_SKIP_SEEN")
    setBool(&cfg.CacheClear, "CACHE_CLEAR")
    setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
}
