// SPDX-License-Identifier: Apache-2.0
// Package launch turns a descriptor's argument tokens into the final
// command line: it builds the classpath, fills ${name} placeholders and
// orders the JVM, main-class and game tokens.
package launch

import (
	"regexp"

	"github.com/provide-io/crafter/pkg/config"
)

// DefaultAuthUUID is the player UUID offered to the game when the
// configuration carries none.
const DefaultAuthUUID = "e371151a-b6b4-496a-b446-0abcd3e75ec4"

// Lookup is the string-keyed configuration view placeholders fall back to.
type Lookup interface {
	Get(key string) (string, bool)
}

// Context carries the values behind the well-known placeholders.
type Context struct {
	GameDirectory    string
	AssetsRoot       string
	AssetsIndexName  string
	VersionName      string
	Classpath        string
	NativesDirectory string
	AuthUUID         string
	Config           Lookup
}

var placeholder = regexp.MustCompile(`\$\{(\w+)\}`)

// Resolve returns the value of placeholder name. Well-known names come from
// the context; anything else is looked up in Config. Unknown names resolve
// to the empty string.
func (c *Context) Resolve(name string) string {
	switch name {
	case "game_directory":
		return c.GameDirectory
	case "assets_root", "game_assets":
		return c.AssetsRoot
	case "assets_index_name":
		return c.AssetsIndexName
	case "version_name":
		return c.VersionName
	case "classpath":
		return c.Classpath
	case "natives_directory":
		return c.NativesDirectory
	case config.KeyAuthUUID:
		if v, ok := c.lookup(name); ok {
			return v
		}
		if c.AuthUUID != "" {
			return c.AuthUUID
		}
		return DefaultAuthUUID
	}
	v, _ := c.lookup(name)
	return v
}

func (c *Context) lookup(name string) (string, bool) {
	if c.Config == nil {
		return "", false
	}
	return c.Config.Get(name)
}

// Substitute returns a copy of tokens with every ${name} replaced by its
// resolved value.
func Substitute(tokens []string, ctx *Context) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = placeholder.ReplaceAllStringFunc(tok, func(m string) string {
			return ctx.Resolve(placeholder.FindStringSubmatch(m)[1])
		})
	}
	return out
}

// Assemble orders the final argument list: JVM tokens, the main class, then
// game tokens.
func Assemble(jvm []string, mainClass string, game []string) []string {
	argv := make([]string, 0, len(jvm)+1+len(game))
	argv = append(argv, jvm...)
	argv = append(argv, mainClass)
	return append(argv, game...)
}
