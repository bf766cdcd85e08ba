package meta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/provide-io/crafter/pkg/platform"
)

// Tokens added for legacy descriptors, which never declare JVM arguments.
var legacyJVMTokens = []string{
	"-Djava.library.path=${natives_directory}",
	"-cp",
	"${classpath}",
}

// ArgValue is the value of a conditional argument: one string or a list of
// strings on the wire.
type ArgValue []string

func (v *ArgValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = ArgValue{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("argument value must be a string or a list of strings: %w", err)
	}
	*v = many
	return nil
}

func (v ArgValue) MarshalJSON() ([]byte, error) {
	if len(v) == 1 {
		return json.Marshal(v[0])
	}
	return json.Marshal([]string(v))
}

// Conditional is an argument gated on a rule list.
type Conditional struct {
	Rules []platform.Rule `json:"rules"`
	Value ArgValue        `json:"value"`
}

// Argument is a literal token or a Conditional.
type Argument struct {
	Literal     string
	Conditional *Conditional
}

// Lit builds a literal argument.
func Lit(s string) Argument { return Argument{Literal: s} }

func (a *Argument) UnmarshalJSON(data []byte) error {
	var lit string
	if err := json.Unmarshal(data, &lit); err == nil {
		*a = Argument{Literal: lit}
		return nil
	}
	var cond Conditional
	if err := json.Unmarshal(data, &cond); err != nil {
		return fmt.Errorf("argument must be a string or a {rules, value} object: %w", err)
	}
	*a = Argument{Conditional: &cond}
	return nil
}

func (a Argument) MarshalJSON() ([]byte, error) {
	if a.Conditional != nil {
		return json.Marshal(a.Conditional)
	}
	return json.Marshal(a.Literal)
}

// Tokens returns the argument's contribution on p: zero tokens when its
// rules deny it, otherwise its value.
func (a Argument) Tokens(p platform.Platform) []string {
	if a.Conditional == nil {
		return []string{a.Literal}
	}
	if !platform.AllAllowed(a.Conditional.Rules, p) {
		return nil
	}
	return append([]string(nil), a.Conditional.Value...)
}

// ArgumentsKind tells which wire shape an Arguments value came from.
type ArgumentsKind int

const (
	StructuredArguments ArgumentsKind = iota
	LegacyArguments
)

// Arguments is either the structured {jvm, game} shape or the legacy single
// space-joined game argument string.
type Arguments struct {
	Kind   ArgumentsKind
	JVM    []Argument
	Game   []Argument
	Legacy string
}

// NewLegacyArguments wraps a legacy argument string.
func NewLegacyArguments(s string) Arguments {
	return Arguments{Kind: LegacyArguments, Legacy: s}
}

type structuredWire struct {
	Game []Argument `json:"game"`
	JVM  []Argument `json:"jvm"`
}

// UnmarshalJSON tries the structured object shape first and falls back to
// the legacy string.
func (a *Arguments) UnmarshalJSON(data []byte) error {
	var wire structuredWire
	objErr := json.Unmarshal(data, &wire)
	if objErr == nil && bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		*a = Arguments{Kind: StructuredArguments, JVM: wire.JVM, Game: wire.Game}
		return nil
	}

	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		*a = NewLegacyArguments(legacy)
		return nil
	}
	if objErr == nil {
		objErr = fmt.Errorf("unexpected arguments value %s", data)
	}
	return fmt.Errorf("decoding arguments: %w", objErr)
}

func (a Arguments) MarshalJSON() ([]byte, error) {
	if a.Kind == LegacyArguments {
		return json.Marshal(a.Legacy)
	}
	return json.Marshal(structuredWire{Game: a.Game, JVM: a.JVM})
}

// Tokens flattens the arguments allowed on p into (jvm, game) token lists
// in declared order. Legacy strings are split on single spaces with no
// quoting rules, and get the fixed natives/classpath JVM tokens.
func (a Arguments) Tokens(p platform.Platform) (jvm, game []string) {
	if a.Kind == LegacyArguments {
		jvm = append([]string(nil), legacyJVMTokens...)
		game = strings.Split(a.Legacy, " ")
		return jvm, game
	}

	jvm = []string{}
	for _, arg := range a.JVM {
		jvm = append(jvm, arg.Tokens(p)...)
	}
	game = []string{}
	for _, arg := range a.Game {
		game = append(game, arg.Tokens(p)...)
	}
	return jvm, game
}
