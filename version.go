package cairn

// Version is the library version, reported by the CLI and the servers.
const Version = "0.1.0"
