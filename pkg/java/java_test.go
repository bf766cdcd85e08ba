package java

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	crerrors "github.com/provide-io/crafter/pkg/errors"
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "java_test",
		Level: hclog.Trace,
	})
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		version string
		major   int
	}{
		{"legacy", `java version "1.8.0_301"` + "\nJava(TM) SE Runtime Environment", "1.8.0_301", 8},
		{"openjdk", `openjdk version "17.0.2" 2022-01-18`, "17.0.2", 17},
		{"feature only", `openjdk version "21" 2023-09-19`, "21.0.0", 21},
		{"four part", `openjdk version "11.0.20.1" 2023-08-24`, "11.0.20", 11},
		{"legacy without update", `java version "1.7.0"`, "1.7.0", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := ParseVersion(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.version, inst.Version)
			assert.Equal(t, tt.major, inst.Major())
		})
	}
}

func TestParseVersionInvalid(t *testing.T) {
	_, err := ParseVersion("command not found")
	assert.Error(t, err)
}

func fakeProber(outputs map[string]string) Prober {
	return func(ctx context.Context, path string) (string, error) {
		out, ok := outputs[path]
		if !ok {
			return "", errors.New("exec: not found")
		}
		return out, nil
	}
}

func TestDiscoverOrdersNewestFirst(t *testing.T) {
	probe := fakeProber(map[string]string{
		"/jdk8a/bin/java": `java version "1.8.0_202"`,
		"/jdk8b/bin/java": `java version "1.8.0_301"`,
		"/jdk17/bin/java": `openjdk version "17.0.2"`,
		"/jdk21/bin/java": `openjdk version "21.0.1"`,
		"/broken/java":    "garbage",
	})
	list := Discover(context.Background(), []string{
		"/jdk8a/bin/java", "/jdk17/bin/java", "/missing/java", "/broken/java",
		"/jdk21/bin/java", "/jdk8b/bin/java", "/jdk17/bin/../bin/java",
	}, probe, testLogger())

	var paths []string
	for _, inst := range list {
		paths = append(paths, inst.Path)
	}
	assert.Equal(t, []string{"/jdk21/bin/java", "/jdk17/bin/java", "/jdk8b/bin/java", "/jdk8a/bin/java"}, paths)

	latest, err := list.Latest()
	require.NoError(t, err)
	assert.Equal(t, "21.0.1", latest.Version)

	inst, ok := list.ForMajor(8)
	require.True(t, ok)
	assert.Equal(t, "/jdk8b/bin/java", inst.Path)

	_, ok = list.ForMajor(11)
	assert.False(t, ok)
}

func TestLatestEmpty(t *testing.T) {
	_, err := List(nil).Latest()
	assert.ErrorIs(t, err, crerrors.ErrNoJava)
}

func TestCandidatesKeepsExplicitFirst(t *testing.T) {
	t.Setenv("JAVA_HOME", "")
	t.Setenv("PATH", t.TempDir())
	assert.Equal(t, []string{"/opt/java"}, Candidates([]string{"/opt/java"}))
}
