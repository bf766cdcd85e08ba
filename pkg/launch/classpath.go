package launch

import (
	"strings"

	"github.com/provide-io/crafter/pkg/download"
	"github.com/provide-io/crafter/pkg/meta"
	"github.com/provide-io/crafter/pkg/platform"
)

// BuildClasspath lists, for each library in order, its platform natives
// archive (if any) and then its primary artifact, all under libsRoot, and
// finally clientJar. Entries are joined with p's separator.
func BuildClasspath(libs []meta.Library, p platform.Platform, libsRoot, clientJar string) (string, error) {
	entries := make([]string, 0, 2*len(libs)+1)
	for i := range libs {
		lib := &libs[i]

		native, err := lib.PlatformNative(p)
		if err != nil {
			return "", err
		}
		if native != nil {
			path, err := download.TargetPath(*native, libsRoot)
			if err != nil {
				return "", err
			}
			entries = append(entries, path)
		}

		if art := lib.Downloads.Artifact; art != nil {
			path, err := download.TargetPath(*art, libsRoot)
			if err != nil {
				return "", err
			}
			entries = append(entries, path)
		}
	}
	entries = append(entries, clientJar)
	return strings.Join(entries, p.PathListSeparator()), nil
}
