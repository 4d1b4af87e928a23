package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type ServerConfig struct {
	Addr       string `json:"addr"`
	APIPrefix  string `json:"api_prefix"`
	CORSOrigin string `json:"cors_origin"`
}

type AgentConfig struct {
	Name string `json:"name"`
	// Root 代理工作目录，所有任务/记忆文件相对于此目录解析。
	// Root is the agent workspace; task and memory files resolve relative to it.
	Root             string `json:"root"`
	ConfigDoc        string `json:"config_doc"`
	PackagePath      string `json:"package_path"`
	CLI              string `json:"cli"`
	DefaultVersion   string `json:"default_version"`
	VersionTimeoutMS int    `json:"version_timeout_ms"`
}

type SkillsConfig struct {
	SystemDir string `json:"system_dir"`
	// CustomDir 相对路径按 agent.root 解析。
	// CustomDir is resolved against agent.root when relative.
	CustomDir string `json:"custom_dir"`
}

type ProcessesConfig struct {
	CachePath string `json:"cache_path"`
}

type MemoryConfig struct {
	Paths []string `json:"paths"`
}

type UIConfig struct {
	Locale         string `json:"locale"`
	RefreshSeconds int    `json:"refresh_seconds"`
}

type Config struct {
	Server    ServerConfig    `json:"server"`
	Agent     AgentConfig     `json:"agent"`
	Skills    SkillsConfig    `json:"skills"`
	Processes ProcessesConfig `json:"processes"`
	Memory    MemoryConfig    `json:"memory"`
	UI        UIConfig        `json:"ui"`
}

type fileConfig struct {
	Server    *ServerConfig    `json:"server"`
	Agent     *AgentConfig     `json:"agent"`
	Skills    *SkillsConfig    `json:"skills"`
	Processes *ProcessesConfig `json:"processes"`
	Memory    *MemoryConfig    `json:"memory"`
	UI        *UIConfig        `json:"ui"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:       DefaultAddr,
			APIPrefix:  DefaultAPIPrefix,
			CORSOrigin: "*",
		},
		Agent: AgentConfig{
			Name:             DefaultAgentName,
			Root:             "~/.openclaw",
			ConfigDoc:        "AGENTS.md",
			PackagePath:      "/usr/lib/node_modules/openclaw/package.json",
			CLI:              "openclaw",
			DefaultVersion:   DefaultVersion,
			VersionTimeoutMS: DefaultVersionTimeoutMS,
		},
		Skills: SkillsConfig{
			SystemDir: "/usr/lib/node_modules/openclaw/skills",
			CustomDir: "skills",
		},
		Processes: ProcessesConfig{
			CachePath: "~/clawdia-api/cron-cache.json",
		},
		Memory: MemoryConfig{
			Paths: []string{"memory", "MEMORY.md"},
		},
		UI: UIConfig{
			Locale:         DefaultLocale,
			RefreshSeconds: DefaultRefreshSeconds,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("CLAWDIA_CONFIG_PATH")); envPath != "" {
		resolvedPath = envPath
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	return applyEnv(cfg)
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".clawdia", "config.json"),
		filepath.Join(home, ".clawdia", "config.jsonc"),
	}
}

func findProjectConfigPath() string {
	candidates := []string{
		"clawdia.config.json",
		"clawdia.config.jsonc",
		".clawdia/config.json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	cleaned := stripJSONComments(data)
	var fileCfg fileConfig
	if err := json.Unmarshal(cleaned, &fileCfg); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Server != nil {
		cfg.Server = mergeServer(cfg.Server, *fc.Server)
	}
	if fc.Agent != nil {
		cfg.Agent = mergeAgent(cfg.Agent, *fc.Agent)
	}
	if fc.Skills != nil {
		if strings.TrimSpace(fc.Skills.SystemDir) != "" {
			cfg.Skills.SystemDir = fc.Skills.SystemDir
		}
		if strings.TrimSpace(fc.Skills.CustomDir) != "" {
			cfg.Skills.CustomDir = fc.Skills.CustomDir
		}
	}
	if fc.Processes != nil && strings.TrimSpace(fc.Processes.CachePath) != "" {
		cfg.Processes.CachePath = fc.Processes.CachePath
	}
	if fc.Memory != nil && len(fc.Memory.Paths) > 0 {
		cfg.Memory.Paths = append([]string(nil), fc.Memory.Paths...)
	}
	if fc.UI != nil {
		if strings.TrimSpace(fc.UI.Locale) != "" {
			cfg.UI.Locale = fc.UI.Locale
		}
		if fc.UI.RefreshSeconds > 0 {
			cfg.UI.RefreshSeconds = fc.UI.RefreshSeconds
		}
	}
}

func mergeServer(base ServerConfig, override ServerConfig) ServerConfig {
	if strings.TrimSpace(override.Addr) != "" {
		base.Addr = override.Addr
	}
	if strings.TrimSpace(override.APIPrefix) != "" {
		base.APIPrefix = override.APIPrefix
	}
	if strings.TrimSpace(override.CORSOrigin) != "" {
		base.CORSOrigin = override.CORSOrigin
	}
	return base
}

func mergeAgent(base AgentConfig, override AgentConfig) AgentConfig {
	if strings.TrimSpace(override.Name) != "" {
		base.Name = override.Name
	}
	if strings.TrimSpace(override.Root) != "" {
		base.Root = override.Root
	}
	if strings.TrimSpace(override.ConfigDoc) != "" {
		base.ConfigDoc = override.ConfigDoc
	}
	if strings.TrimSpace(override.PackagePath) != "" {
		base.PackagePath = override.PackagePath
	}
	if strings.TrimSpace(override.CLI) != "" {
		base.CLI = override.CLI
	}
	if strings.TrimSpace(override.DefaultVersion) != "" {
		base.DefaultVersion = override.DefaultVersion
	}
	if override.VersionTimeoutMS > 0 {
		base.VersionTimeoutMS = override.VersionTimeoutMS
	}
	return base
}

func normalize(cfg *Config) error {
	def := Default()
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	cfg.Server.APIPrefix = "/" + strings.Trim(strings.TrimSpace(cfg.Server.APIPrefix), "/")
	if strings.TrimSpace(cfg.Agent.Name) == "" {
		cfg.Agent.Name = def.Agent.Name
	}
	if strings.TrimSpace(cfg.Agent.DefaultVersion) == "" {
		cfg.Agent.DefaultVersion = def.Agent.DefaultVersion
	}
	if cfg.Agent.VersionTimeoutMS <= 0 {
		cfg.Agent.VersionTimeoutMS = def.Agent.VersionTimeoutMS
	}
	if cfg.UI.RefreshSeconds <= 0 {
		cfg.UI.RefreshSeconds = def.UI.RefreshSeconds
	}
	if strings.TrimSpace(cfg.UI.Locale) == "" {
		cfg.UI.Locale = def.UI.Locale
	}
	if len(cfg.Memory.Paths) == 0 {
		cfg.Memory.Paths = def.Memory.Paths
	}

	root, err := expandPath(cfg.Agent.Root)
	if err != nil {
		return err
	}
	cfg.Agent.Root = root

	if cfg.Agent.PackagePath, err = expandPath(cfg.Agent.PackagePath); err != nil {
		return err
	}
	if cfg.Skills.SystemDir, err = expandPath(cfg.Skills.SystemDir); err != nil {
		return err
	}
	if cfg.Processes.CachePath, err = expandPath(cfg.Processes.CachePath); err != nil {
		return err
	}

	custom := strings.TrimSpace(cfg.Skills.CustomDir)
	if custom != "" && !filepath.IsAbs(custom) && !strings.HasPrefix(custom, "~") {
		custom = filepath.Join(root, custom)
	}
	if cfg.Skills.CustomDir, err = expandPath(custom); err != nil {
		return err
	}
	return nil
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("CLAWDIA_ROOT")); v != "" {
		cfg.Agent.Root = v
	}
	if v := strings.TrimSpace(os.Getenv("CLAWDIA_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("CLAWDIA_CRON_CACHE")); v != "" {
		cfg.Processes.CachePath = v
	}
	if v := strings.TrimSpace(os.Getenv("CLAWDIA_SYSTEM_SKILLS")); v != "" {
		cfg.Skills.SystemDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CLAWDIA_LOCALE")); v != "" {
		cfg.UI.Locale = v
	}
	if v := strings.TrimSpace(os.Getenv("CLAWDIA_REFRESH_SECONDS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid CLAWDIA_REFRESH_SECONDS: %q", v)
		}
		cfg.UI.RefreshSeconds = n
	}

	return cfg, normalize(&cfg)
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.Bytes()
}
