package skrape

// Version is the current SDK version.
//
// This version follows semantic versioning (https://semver.org/).
// It is sent in the default User-Agent header as "skrape-go/<Version>".
const Version = "0.1.0"
