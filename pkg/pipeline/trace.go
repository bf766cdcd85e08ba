package pipeline

import (
	"strings"

	"github.com/hashicorp/go-hclog"
)

const redacted = "***"

// logArgvTrace logs the launch command at trace level with secret values
// masked.
func logArgvTrace(javaPath string, argv, secrets []string, logger hclog.Logger) {
	if !logger.IsTrace() {
		return
	}
	logger.Trace("🚀 Full command with args", "java", javaPath, "args", redactArgs(argv, secrets))
}

func redactArgs(argv, secrets []string) []string {
	out := make([]string, len(argv))
	for i, arg := range argv {
		if i > 0 && argv[i-1] == "--accessToken" {
			out[i] = redacted
			continue
		}
		for _, s := range secrets {
			arg = strings.ReplaceAll(arg, s, redacted)
		}
		out[i] = arg
	}
	return out
}

// logEnvironmentTrace logs environment variables at trace level, redacting
// sensitive values.
func logEnvironmentTrace(env []string, logger hclog.Logger) {
	if !logger.IsTrace() {
		return
	}

	logger.Trace("🌍 Environment variables being passed to the game:")
	for _, e := range env {
		key, value, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		if isSensitiveKey(key) {
			value = redacted
		}
		logger.Trace("  →", "key", key, "value", value)
	}
}

var sensitiveKeys = map[string]bool{
	"auth_access_token":     true,
	"auth_session":          true,
	"clientid":              true,
	"auth_xuid":             true,
	"SSH_AUTH_SOCK":         true,
	"AWS_SECRET_ACCESS_KEY": true,
	"GITHUB_TOKEN":          true,
	"PASSWORD":              true,
}

// isSensitiveKey reports whether a config key or environment variable holds
// a credential.
func isSensitiveKey(key string) bool {
	if sensitiveKeys[key] {
		return true
	}
	upper := strings.ToUpper(key)
	return strings.HasSuffix(upper, "_TOKEN") || strings.HasSuffix(upper, "_SECRET")
}
