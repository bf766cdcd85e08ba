// Package java finds installed Java runtimes and orders them by version.
package java

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/mod/semver"

	crerrors "github.com/provide-io/crafter/pkg/errors"
)

// Installation is one Java runtime.
type Installation struct {
	Path    string
	Version string
	semver  string
	update  int
}

// Major is the Java feature release: 8 for "1.8.0_301", 17 for "17.0.2".
func (i Installation) Major() int {
	m := semver.Major(i.semver)
	n, _ := strconv.Atoi(m[1:])
	if n == 1 {
		minor := semver.MajorMinor(i.semver)
		n, _ = strconv.Atoi(minor[len("v1."):])
	}
	return n
}

// List is a set of installations ordered newest first.
type List []Installation

// Latest returns the newest installation.
func (l List) Latest() (Installation, error) {
	if len(l) == 0 {
		return Installation{}, crerrors.ErrNoJava
	}
	return l[0], nil
}

// ForMajor returns the newest installation of feature release major.
func (l List) ForMajor(major int) (Installation, bool) {
	for _, inst := range l {
		if inst.Major() == major {
			return inst, true
		}
	}
	return Installation{}, false
}

var versionPattern = regexp.MustCompile(`version "(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:_(\d+))?[^"]*"`)

// ParseVersion extracts the version from `java -version` output.
func ParseVersion(output string) (Installation, error) {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return Installation{}, fmt.Errorf("no version in java output %q", output)
	}

	parts := []string{m[1], "0", "0"}
	for i, p := range m[2:4] {
		if p != "" {
			parts[i+1] = p
		}
	}
	inst := Installation{
		semver: fmt.Sprintf("v%s.%s.%s", parts[0], parts[1], parts[2]),
	}
	inst.Version = fmt.Sprintf("%s.%s.%s", parts[0], parts[1], parts[2])
	if m[4] != "" {
		inst.update, _ = strconv.Atoi(m[4])
		inst.Version += "_" + m[4]
	}
	if !semver.IsValid(inst.semver) {
		return Installation{}, fmt.Errorf("invalid java version %q", inst.Version)
	}
	return inst, nil
}

// Prober runs a candidate binary and returns its version output.
type Prober func(ctx context.Context, path string) (string, error)

// ExecProber runs `<path> -version`.
func ExecProber(ctx context.Context, path string) (string, error) {
	out, err := exec.CommandContext(ctx, path, "-version").CombinedOutput()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Candidates returns the explicit paths followed by JAVA_HOME's java and the
// java found on PATH.
func Candidates(explicit []string) []string {
	candidates := append([]string(nil), explicit...)
	bin := "java"
	if runtime.GOOS == "windows" {
		bin = "java.exe"
	}
	if home := os.Getenv("JAVA_HOME"); home != "" {
		candidates = append(candidates, filepath.Join(home, "bin", bin))
	}
	if p, err := exec.LookPath("java"); err == nil {
		candidates = append(candidates, p)
	}
	return candidates
}

// Discover probes each candidate and returns the working ones newest first.
// Candidates that fail to run or report no version are skipped.
func Discover(ctx context.Context, candidates []string, probe Prober, logger hclog.Logger) List {
	logger = logger.Named("java")
	seen := make(map[string]bool, len(candidates))
	var list List

	for _, path := range candidates {
		path = filepath.Clean(path)
		if seen[path] {
			continue
		}
		seen[path] = true

		out, err := probe(ctx, path)
		if err != nil {
			logger.Debug("⚠️ Skipping java candidate", "path", path, "error", err)
			continue
		}
		inst, err := ParseVersion(out)
		if err != nil {
			logger.Debug("⚠️ Skipping java candidate", "path", path, "error", err)
			continue
		}
		inst.Path = path
		logger.Trace("☕ Found java", "path", path, "version", inst.Version)
		list = append(list, inst)
	}

	sort.SliceStable(list, func(i, j int) bool {
		if c := semver.Compare(list[i].semver, list[j].semver); c != 0 {
			return c > 0
		}
		return list[i].update > list[j].update
	})
	return list
}
