package version

// Version is the release the binary was built from, injected at link time:
// go build -ldflags "-X github.com/kitobxon/kitobxon/pkg/version.Version=1.0.0".
var Version = "dev"
