package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} references.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match
	})
}

// findMissingEnvVars returns the names still unresolved after substitution.
func findMissingEnvVars(content string) []string {
	seen := make(map[string]bool)
	var missing []string
	for _, m := range envVarPattern.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			missing = append(missing, m[1])
		}
	}
	return missing
}

// normalizeLegacy rewrites the upper-case layout used by older config files
// into the current key names. Keys already present in the new layout win.
func normalizeLegacy(root *yaml.Node) {
	lowerKeys(root)
	for _, section := range []string{"server", "notifiarr", "log", "api_keys", "overseerr", "logging"} {
		if n := getKey(root, section); n != nil {
			lowerKeys(n)
		}
	}

	if url := takeKey(root, "overseerr_baseurl"); url != nil {
		setDefaultKey(ensureMap(root, "overseerr"), "base_url", url)
	}
	if keys := takeKey(root, "api_keys"); keys != nil {
		if k := getKey(keys, "overseerr"); k != nil {
			setDefaultKey(ensureMap(root, "overseerr"), "api_key", k)
		}
	}
	if level := takeKey(root, "log_level"); level != nil {
		level.Value = strings.ToLower(level.Value)
		setDefaultKey(ensureMap(root, "logging"), "level", level)
	}
	if log := takeKey(root, "log"); log != nil && log.Kind == yaml.MappingNode {
		logging := ensureMap(root, "logging")
		renames := map[string]string{
			"file_enabled":   "file_enabled",
			"file_path":      "path",
			"rotate_backups": "max_backups",
			"color":          "color",
			"format":         "file_format",
		}
		for oldKey, newKey := range renames {
			if n := getKey(log, oldKey); n != nil {
				setDefaultKey(logging, newKey, n)
			}
		}
		if n := getKey(log, "rotate_max_bytes"); n != nil {
			if b, err := strconv.Atoi(n.Value); err == nil {
				mb := (b + (1<<20 - 1)) >> 20
				if mb < 1 {
					mb = 1
				}
				setDefaultKey(logging, "max_size_mb", scalar(strconv.Itoa(mb), "!!int"))
			}
		}
	}
}

func scalar(value, tag string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func lowerKeys(m *yaml.Node) {
	if m == nil || m.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i < len(m.Content); i += 2 {
		m.Content[i].Value = strings.ToLower(m.Content[i].Value)
	}
}

func getKey(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if strings.EqualFold(m.Content[i].Value, key) {
			return m.Content[i+1]
		}
	}
	return nil
}

// takeKey removes key from the mapping and returns its value.
func takeKey(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if strings.EqualFold(m.Content[i].Value, key) {
			val := m.Content[i+1]
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return val
		}
	}
	return nil
}

func setDefaultKey(m *yaml.Node, key string, val *yaml.Node) {
	if getKey(m, key) != nil {
		return
	}
	m.Content = append(m.Content, scalar(key, "!!str"), val)
}

func ensureMap(m *yaml.Node, key string) *yaml.Node {
	if n := getKey(m, key); n != nil && n.Kind == yaml.MappingNode {
		return n
	}
	takeKey(m, key)
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	m.Content = append(m.Content, scalar(key, "!!str"), n)
	return n
}
