package main

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("tp {{.Version}}\n")
}
