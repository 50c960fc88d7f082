package utils

import (
	"runtime/debug"
	"strings"
)

const (
	unknownVersion     = "unknown"
	develVersion       = "(devel)"
	revisionSettingKey = "vcs.revision"
	modifiedSettingKey = "vcs.modified"
	dirtySuffix        = "-dirty"
	shortRevisionWidth = 12
)

// Version is set at link time with -ldflags "-X github.com/temirov/fstree/internal/utils.Version=v1.2.3".
var Version = ""

// GetApplicationVersion reports the linked Version, then the module version from build
// information, then the VCS revision recorded by the Go toolchain.
func GetApplicationVersion() string {
	if strings.TrimSpace(Version) != "" {
		return Version
	}
	buildInfo, available := debug.ReadBuildInfo()
	if !available {
		return unknownVersion
	}
	return versionFromBuildInfo(buildInfo)
}

func versionFromBuildInfo(buildInfo *debug.BuildInfo) string {
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != develVersion {
		return buildInfo.Main.Version
	}
	var revision string
	var modified bool
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case revisionSettingKey:
			revision = setting.Value
		case modifiedSettingKey:
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return unknownVersion
	}
	if len(revision) > shortRevisionWidth {
		revision = revision[:shortRevisionWidth]
	}
	if modified {
		revision += dirtySuffix
	}
	return revision
}
