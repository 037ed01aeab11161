package version

// Current is the module version reported by the CLI and health output.
const Current = "0.1.0"
