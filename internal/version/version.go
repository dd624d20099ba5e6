package version

// Version is the current SafeChild release.
const Version = "0.3.1"
