package launch

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/crafter/pkg/config"
	crerrors "github.com/provide-io/crafter/pkg/errors"
	"github.com/provide-io/crafter/pkg/meta"
	"github.com/provide-io/crafter/pkg/platform"
)

type mapLookup map[string]string

func (m mapLookup) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

var (
	linux64 = platform.Platform{OS: platform.Linux, Arch: platform.X86_64}
	win64   = platform.Platform{OS: platform.Windows, Arch: platform.X86_64}
)

func testLibraries() []meta.Library {
	return []meta.Library{
		{
			Name: "org.lwjgl:lwjgl:3",
			Downloads: meta.LibraryDownloads{
				Artifact: &meta.Download{Path: "org/lwjgl/lwjgl.jar", URL: "https://libs.example/lwjgl.jar"},
				Classifiers: map[string]meta.Download{
					"natives-linux":   {Path: "org/lwjgl/lwjgl-natives-linux.jar", URL: "https://libs.example/nl.jar"},
					"natives-windows": {Path: "org/lwjgl/lwjgl-natives-windows.jar", URL: "https://libs.example/nw.jar"},
				},
			},
			Natives: meta.Natives{
				{OS: platform.Linux, Classifier: "natives-linux"},
				{OS: platform.Windows, Classifier: "natives-windows"},
			},
		},
		{
			Name:      "natives-only:x:1",
			Downloads: meta.LibraryDownloads{Classifiers: map[string]meta.Download{"natives-osx": {Path: "x/x-osx.jar", URL: "https://libs.example/x.jar"}}},
			Natives:   meta.Natives{{OS: platform.OSX, Classifier: "natives-osx"}},
		},
		{
			Name:      "com.google:gson:2",
			Downloads: meta.LibraryDownloads{Artifact: &meta.Download{Path: "com/google/gson.jar", URL: "https://libs.example/gson.jar"}},
		},
	}
}

func TestBuildClasspath(t *testing.T) {
	root := filepath.Join("data", "libraries")
	jar := filepath.Join("data", "profiles", "main", "client.jar")

	got, err := BuildClasspath(testLibraries(), linux64, root, jar)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "org", "lwjgl", "lwjgl-natives-linux.jar"),
		filepath.Join(root, "org", "lwjgl", "lwjgl.jar"),
		filepath.Join(root, "com", "google", "gson.jar"),
		jar,
	}, strings.Split(got, ":"))
}

func TestBuildClasspathWindowsSeparator(t *testing.T) {
	got, err := BuildClasspath(testLibraries(), win64, "libs", "client.jar")
	require.NoError(t, err)
	parts := strings.Split(got, ";")
	require.Len(t, parts, 4)
	assert.Equal(t, filepath.Join("libs", "org", "lwjgl", "lwjgl-natives-windows.jar"), parts[0])
	assert.Equal(t, "client.jar", parts[3])
}

func TestBuildClasspathNoLibraries(t *testing.T) {
	got, err := BuildClasspath(nil, linux64, "libs", "client.jar")
	require.NoError(t, err)
	assert.Equal(t, "client.jar", got)
}

func TestBuildClasspathAmbiguousNative(t *testing.T) {
	libs := []meta.Library{{
		Name:      "dup:dup:1",
		Downloads: meta.LibraryDownloads{Classifiers: map[string]meta.Download{"a": {URL: "u"}, "b": {URL: "u"}}},
		Natives:   meta.Natives{{OS: platform.Linux, Classifier: "a"}, {OS: platform.Linux, Classifier: "b"}},
	}}
	_, err := BuildClasspath(libs, linux64, "libs", "client.jar")
	assert.ErrorIs(t, err, crerrors.ErrAmbiguousNative)
}

func TestResolve(t *testing.T) {
	ctx := &Context{
		GameDirectory:    "/game",
		AssetsRoot:       "/assets",
		AssetsIndexName:  "5",
		VersionName:      "1.20.1",
		Classpath:        "a.jar:b.jar",
		NativesDirectory: "/game/.natives",
		Config:           mapLookup{"auth_player_name": "Steve", "version_name": "shadowed"},
	}

	tests := []struct {
		name     string
		expected string
	}{
		{"game_directory", "/game"},
		{"assets_root", "/assets"},
		{"game_assets", "/assets"},
		{"assets_index_name", "5"},
		{"version_name", "1.20.1"},
		{"classpath", "a.jar:b.jar"},
		{"natives_directory", "/game/.natives"},
		{"auth_player_name", "Steve"},
		{"auth_uuid", DefaultAuthUUID},
		{"totally_unknown", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ctx.Resolve(tt.name))
		})
	}
}

func TestResolveAuthUUIDOverride(t *testing.T) {
	ctx := &Context{AuthUUID: "from-context"}
	assert.Equal(t, "from-context", ctx.Resolve("auth_uuid"))

	ctx.Config = config.Config{config.KeyAuthUUID: "from-config"}
	assert.Equal(t, "from-config", ctx.Resolve("auth_uuid"))
}

func TestSubstitute(t *testing.T) {
	ctx := &Context{Classpath: "x.jar:y.jar", Config: mapLookup{"auth_player_name": "Alex"}}

	got := Substitute([]string{
		"${classpath}",
		"${totally_unknown}",
		"plain",
		"-Dname=${auth_player_name}-${auth_player_name}",
		"$notatoken",
		"${}",
	}, ctx)
	assert.Equal(t, []string{
		"x.jar:y.jar",
		"",
		"plain",
		"-Dname=Alex-Alex",
		"$notatoken",
		"${}",
	}, got)
}

func TestSubstituteNilConfig(t *testing.T) {
	got := Substitute([]string{"${auth_player_name}"}, &Context{})
	assert.Equal(t, []string{""}, got)
}

func TestLegacyEndToEnd(t *testing.T) {
	desc, err := meta.DecodeDescriptor([]byte(`{
		"id": "1.20.1",
		"mainClass": "net.minecraft.client.main.Main",
		"assetIndex": {"id": "5", "url": "https://meta.example/5.json"},
		"downloads": {"client": {"url": "https://meta.example/client.jar"}},
		"minecraftArguments": "--username ${auth_player_name} --version ${version_name}",
		"libraries": []
	}`), "test")
	require.NoError(t, err)

	classpath, err := BuildClasspath(desc.AllowedLibraries(linux64), linux64, "libs", "client.jar")
	require.NoError(t, err)

	ctx := &Context{
		VersionName:      "1.20.1",
		Classpath:        classpath,
		NativesDirectory: "/p/.natives",
		Config:           mapLookup{"auth_player_name": "Steve"},
	}
	jvmRaw, gameRaw := desc.Arguments.Tokens(linux64)
	jvm, game := Substitute(jvmRaw, ctx), Substitute(gameRaw, ctx)

	assert.Equal(t, []string{"--username", "Steve", "--version", "1.20.1"}, game)
	assert.Equal(t, []string{"-Djava.library.path=/p/.natives", "-cp", "client.jar"}, jvm)
	assert.Equal(t,
		[]string{"-Djava.library.path=/p/.natives", "-cp", "client.jar", "net.minecraft.client.main.Main", "--username", "Steve", "--version", "1.20.1"},
		Assemble(jvm, desc.MainClass, game))
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "  \t ", []string{}},
		{"words", "-XX:+UseG1GC  -Dfoo=bar", []string{"-XX:+UseG1GC", "-Dfoo=bar"}},
		{"double quotes", `-Dmsg="hello world"`, []string{"-Dmsg=hello world"}},
		{"single quotes keep backslash", `'a\b c'`, []string{`a\b c`}},
		{"escaped space", `a\ b c`, []string{"a b", "c"}},
		{"escape inside double quotes", `"say \"hi\" \n"`, []string{`say "hi" \n`}},
		{"empty quoted word", `a "" b`, []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitArgs(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSplitArgsErrors(t *testing.T) {
	_, err := SplitArgs(`-Dx="open`)
	assert.ErrorIs(t, err, ErrUnclosedQuote)

	_, err = SplitArgs(`-Dx='open`)
	assert.ErrorIs(t, err, ErrUnclosedQuote)

	_, err = SplitArgs(`trailing\`)
	assert.ErrorIs(t, err, ErrTrailingEscape)
}
