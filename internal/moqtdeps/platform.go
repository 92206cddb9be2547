package moqtdeps

import "fmt"

// BuildType selects the cmake configuration of a matrix cell.
type BuildType string

const (
	BuildRelease BuildType = "Release"
	BuildDebug   BuildType = "Debug"
)

// Target is one architecture slice of a platform. Name is the directory
// key used by the build key space; ApplePlatform is the PLATFORM value
// handed to the iOS toolchain file and is empty for Android ABIs.
type Target struct {
	Name          string
	ApplePlatform string
}

// Platform groups the targets that are built together and later merged
// into one distributable. Target order is fixed: the matrix runner walks
// it exactly as declared here.
type Platform struct {
	Name    string
	Targets []Target
}

var (
	PlatformIOS = Platform{
		Name: "ios",
		Targets: []Target{
			{Name: "device-arm64", ApplePlatform: "OS64"},
			{Name: "simulator-arm64", ApplePlatform: "SIMULATORARM64"},
		},
	}
	PlatformAndroid = Platform{
		Name: "android",
		Targets: []Target{
			{Name: "arm64-v8a"},
			{Name: "x86_64"},
		},
	}
)

// PlatformsFor resolves the -platform flag value.
func PlatformsFor(sel string) ([]Platform, error) {
	switch sel {
	case "ios":
		return []Platform{PlatformIOS}, nil
	case "android":
		return []Platform{PlatformAndroid}, nil
	case "all":
		return []Platform{PlatformIOS, PlatformAndroid}, nil
	}
	return nil, fmt.Errorf("unknown platform %q (want ios, android or all)", sel)
}

// BuildTypesFor resolves the -type flag value.
func BuildTypesFor(sel string) ([]BuildType, error) {
	switch sel {
	case "release":
		return []BuildType{BuildRelease}, nil
	case "debug":
		return []BuildType{BuildDebug}, nil
	case "all":
		return []BuildType{BuildRelease, BuildDebug}, nil
	}
	return nil, fmt.Errorf("unknown build type %q (want release, debug or all)", sel)
}
