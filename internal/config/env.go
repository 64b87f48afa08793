package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadEnv reads a .env file and returns a map of key-value pairs.
// It ignores comments (starting with #) and empty lines.
func LoadEnv(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	env := make(map[string]string)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove inline comments
		if idx := strings.Index(value, " #"); idx != -1 {
			value = strings.TrimSpace(value[:idx])
		}

		// Remove quotes if present
		if len(value) >= 2 && ((value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'')) {
			value = value[1 : len(value)-1]
		}

		env[key] = value
	}

	return env, scanner.Err()
}

// ApplyEnvOverrides updates the configuration based on environment variables.
func ApplyEnvOverrides(cfg *Config, env map[string]string) {
	// Server
	if val, ok := env["SERVER_PORT"]; ok {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}

	// Debate pacing
	if val, ok := env["DEBATE_MIN_WAIT_MS"]; ok {
		if ms, err := strconv.Atoi(val); err == nil && ms > 0 {
			cfg.Debate.MinWait = time.Duration(ms) * time.Millisecond
		}
	}
	if val, ok := env["DEBATE_MAX_WAIT_MS"]; ok {
		if ms, err := strconv.Atoi(val); err == nil && ms > 0 {
			cfg.Debate.MaxWait = time.Duration(ms) * time.Millisecond
		}
	}
	if val, ok := env["DEBATE_MAX_TURNS"]; ok {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.Debate.MaxTurns = n
		}
	}

	// A swapped window is normalized rather than rejected
	if cfg.Debate.MaxWait < cfg.Debate.MinWait {
		cfg.Debate.MinWait, cfg.Debate.MaxWait = cfg.Debate.MaxWait, cfg.Debate.MinWait
	}

	// Model enablement and overrides
	for key, mc := range cfg.Models {
		upper := strings.ToUpper(key)

		if val, ok := env[fmt.Sprintf("MODEL_%s_ENABLED", upper)]; ok {
			if boolVal, err := strconv.ParseBool(val); err == nil {
				mc.Enabled = boolVal
				cfg.Models[key] = mc
			}
		}

		if val, ok := env[fmt.Sprintf("MODEL_%s_NAME", upper)]; ok {
			mc.Model = val
			cfg.Models[key] = mc
		}
	}
}
