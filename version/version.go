package version

// Set at build time with -ldflags "-X github.com/goadapp/proxybench/version.version=..."
var (
	version   string
	build     string
	travisTag string
)

// Version returns the version
func Version() string {
	if version == "" {
		return "dev"
	}
	return version
}

// Build returns the build number
func Build() string {
	if len(build) >= 8 {
		return build[0:8]
	}
	return build
}

func ReleaseVersion() string {
	return travisTag
}

// String returns a composed string of version and build number
func String() string {
	if ReleaseVersion() != "" {
		return ReleaseVersion()
	}
	if Build() == "" {
		return Version()
	}
	return Version() + "-" + Build()
}

// UserAgent is sent with every benchmark request.
func UserAgent() string {
	return "proxybench/" + String()
}
