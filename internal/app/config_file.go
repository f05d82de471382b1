package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/sciencedigest/internal/feed"
)

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to flags and env.
type FileConfig struct {
    Title  string `yaml:"title" json:"title"`
    Input  string `yaml:"input" json:"input"`
    Tables string `yaml:"tables" json:"tables"`

    Output struct {
        Markdown string `yaml:"markdown" json:"markdown"`
        JSON     string `yaml:"json" json:"json"`
        PDF      string `yaml:"pdf" json:"pdf"`
        Explain  string `yaml:"explain" json:"explain"`
    } `yaml:"output" json:"output"`

    Feeds    []feed.Source `yaml:"feeds" json:"feeds"`
    Featured []feed.Source `yaml:"featured" json:"featured"`

    History struct {
        DB       string `yaml:"db" json:"db"`
        SkipSeen bool   `yaml:"skipSeen" json:"skipSeen"`
    } `yaml:"history" json:"history"`

    Cache struct {
        Dir         string   `yaml:"dir" json:"dir"`
        MaxAge      Duration `yaml:"maxAge" json:"maxAge"`
        Clear       bool     `yaml:"clear" json:"clear"`
        StrictPerms bool     `yaml:"strictPerms" json:"strictPerms"`
        MaxBytes    int64    `yaml:"maxBytes" json:"maxBytes"`
        MaxEntries  int      `yaml:"maxEntries" json:"maxEntries"`
    } `yaml:"cache" json:"cache"`

    HTTP struct {
        UserAgent string  `yaml:"userAgent" json:"userAgent"`
        Rate      float64 `yaml:"rate" json:"rate"`
        NoPages   bool    `yaml:"noPages" json:"noPages"`
        IgnoreRobots bool `yaml:"ignoreRobots" json:"ignoreRobots"`
    } `yaml:"http" json:"http"`

    Select struct {
        PerTopic         int      `yaml:"perTopic" json:"perTopic"`
        PerDomain        int      `yaml:"perDomain" json:"perDomain"`
        MaxTotal         int      `yaml:"maxTotal" json:"maxTotal"`
        TopicOrder       []string `yaml:"topicOrder" json:"topicOrder"`
        PreferImages     *bool    `yaml:"preferImages" json:"preferImages"`
        PreferStatistics bool     `yaml:"preferStatistics" json:"preferStatistics"`
        IgnoreTopicHint  bool     `yaml:"ignoreTopicHint" json:"ignoreTopicHint"`
    } `yaml:"select" json:"select"`

    Workers int  `yaml:"workers" json:"workers"`
    Verbose bool `yaml:"verbose" json:"verbose"`
}

// Duration accepts Go duration strings ("36h") in YAML and JSON.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
    var s string
    if err := n.Decode(&s); err != nil {
        return err
    }
    return d.parse(s)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
    var s string
    if err := json.Unmarshal(b, &s); err != nil {
        return err
    }
    return d.parse(s)
}

func (d *Duration) parse(s string) error {
    if strings.TrimSpace(s) == "" {
        *d = 0
        return nil
    }
    v, err := time.ParseDuration(s)
    if err != nil {
        return fmt.Errorf("duration %q: %w", s, err)
    }
    *d = Duration(v)
    return nil
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// Flag defaults that file config may replace. A flag still holding its
// default is treated as unset.
const (
    outputDefault   = "digest.md"
    cacheDirDefault = ".sciencedigest-cache"
    perTopicDefault = 4
    workersDefault  = 4
    rateDefault     = 2.0
)

// ApplyFileConfig overlays values from fc onto cfg wherever cfg still holds
// a zero value or a flag default, so explicit flags win.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if cfg.Title == "" && fc.Title != "" { cfg.Title = fc.Title }
    if cfg.InputPath == "" && fc.Input != "" { cfg.InputPath = fc.Input }
    if cfg.TablesPath == "" && fc.Tables != "" { cfg.TablesPath = fc.Tables }

    if (cfg.OutputPath == "" || cfg.OutputPath == outputDefault) && fc.Output.Markdown != "" { cfg.OutputPath = fc.Output.Markdown }
    if cfg.JSONPath == "" && fc.Output.JSON != "" { cfg.JSONPath = fc.Output.JSON }
    if cfg.PDFPath == "" && fc.Output.PDF != "" { cfg.PDFPath = fc.Output.PDF }
    if cfg.ExplainPath == "" && fc.Output.Explain != "" { cfg.ExplainPath = fc.Output.Explain }

    if len(cfg.Feeds) == 0 && len(fc.Feeds) > 0 { cfg.Feeds = append([]feed.Source{}, fc.Feeds...) }
    if len(cfg.Featured) == 0 && len(fc.Featured) > 0 { cfg.Featured = append([]feed.Source{}, fc.Featured...) }

    if cfg.DBPath == "" && fc.History.DB != "" { cfg.DBPath = fc.History.DB }
    if !cfg.SkipSeen && fc.History.SkipSeen { cfg.SkipSeen = true }

    if (cfg.CacheDir == "" || cfg.CacheDir == cacheDirDefault) && fc.Cache.Dir != "" { cfg.CacheDir = fc.Cache.Dir }
    if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 { cfg.CacheMaxAge = time.Duration(fc.Cache.MaxAge) }
    if !cfg.CacheClear && fc.Cache.Clear { cfg.CacheClear = true }
    if !cfg.CacheStrictPerms && fc.Cache.StrictPerms { cfg.CacheStrictPerms = true }
    if cfg.CacheMaxBytes == 0 && fc.Cache.MaxBytes > 0 { cfg.CacheMaxBytes = fc.Cache.MaxBytes }
    if cfg.CacheMaxEntries == 0 && fc.Cache.MaxEntries > 0 { cfg.CacheMaxEntries = fc.Cache.MaxEntries }

    if cfg.UserAgent == "" && fc.HTTP.UserAgent != "" { cfg.UserAgent = fc.HTTP.UserAgent }
    if (cfg.Rate == 0 || cfg.Rate == rateDefault) && fc.HTTP.Rate > 0 { cfg.Rate = fc.HTTP.Rate }
    if !cfg.NoPageFetch && fc.HTTP.NoPages { cfg.NoPageFetch = true }
    if !cfg.IgnoreRobots && fc.HTTP.IgnoreRobots { cfg.IgnoreRobots = true }

    if (cfg.PerTopic == 0 || cfg.PerTopic == perTopicDefault) && fc.Select.PerTopic > 0 { cfg.PerTopic = fc.Select.PerTopic }
    if cfg.PerDomain == 0 && fc.Select.PerDomain > 0 { cfg.PerDomain = fc.Select.PerDomain }
    if cfg.MaxTotal == 0 && fc.Select.MaxTotal > 0 { cfg.MaxTotal = fc.Select.MaxTotal }
    if len(cfg.TopicOrder) == 0 && len(fc.Select.TopicOrder) > 0 { cfg.TopicOrder = append([]string{}, fc.Select.TopicOrder...) }
    // Images are preferred by default; the file may turn that off.
    if fc.Select.PreferImages != nil { cfg.PreferImages = *fc.Select.PreferImages }
    if !cfg.PreferStatistics && fc.Select.PreferStatistics { cfg.PreferStatistics = true }
    if !cfg.IgnoreTopicHint && fc.Select.IgnoreTopicHint { cfg.IgnoreTopicHint = true }

    if (cfg.Workers == 0 || cfg.Workers == workersDefault) && fc.Workers > 0 { cfg.Workers = fc.Workers }
    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
    if strings.TrimSpace(cfg.OutputPath) == "" && strings.TrimSpace(cfg.JSONPath) == "" && strings.TrimSpace(cfg.PDFPath) == "" {
        return errors.New("config: at least one output path is required")
    }
    if strings.TrimSpace(cfg.InputPath) == "" && len(cfg.Feeds) == 0 {
        return errors.New("config: an input file or at least one feed is required")
    }
    for i, f := range cfg.Feeds {
        if strings.TrimSpace(f.URL) == "" {
            return fmt.Errorf("config: feed %d has no url", i)
        }
    }
    if cfg.SkipSeen && strings.TrimSpace(cfg.DBPath) == "" {
        return errors.New("config: skip-seen needs a history database (-db)")
    }
    if cfg.PerTopic < 0 || cfg.PerDomain < 0 || cfg.MaxTotal < 0 || cfg.Workers < 0 {
        return errors.New("config: negative limits are not allowed")
    }
    if cfg.Rate < 0 {
        return errors.New("config: rate must not be negative")
    }
    return nil
}
