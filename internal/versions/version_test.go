package versions

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionInfo(t *testing.T) {
	t.Parallel()

	vcs := func() (string, string) {
		return "0123456789abcdef", "2026-03-01T10:30:00Z"
	}
	noVCS := func() (string, string) { return "", "" }

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
		vcs       func() (string, string)
		want      VersionInfo
	}{
		{
			name:      "release build",
			version:   "v1.2.3",
			commit:    "abc",
			buildDate: "2026-01-15T10:30:00Z",
			vcs:       vcs,
			want: VersionInfo{
				Version:   "v1.2.3",
				Commit:    "abc",
				BuildDate: "2026-01-15 10:30:00 UTC",
			},
		},
		{
			name:      "dev build falls back to vcs stamps",
			version:   "dev",
			commit:    unknownStr,
			buildDate: unknownStr,
			vcs:       vcs,
			want: VersionInfo{
				Version:   "build-01234567",
				Commit:    "0123456789abcdef",
				BuildDate: "2026-03-01 10:30:00 UTC",
			},
		},
		{
			name:      "dev build without vcs stamps",
			version:   "dev",
			commit:    unknownStr,
			buildDate: unknownStr,
			vcs:       noVCS,
			want: VersionInfo{
				Version:   "build-unknown",
				Commit:    unknownStr,
				BuildDate: unknownStr,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := versionInfo(tt.version, tt.commit, tt.buildDate, tt.vcs)
			tt.want.GoVersion = runtime.Version()
			tt.want.Platform = runtime.GOOS + "/" + runtime.GOARCH
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetVersionInfo(t *testing.T) {
	t.Parallel()

	info := GetVersionInfo()
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}
