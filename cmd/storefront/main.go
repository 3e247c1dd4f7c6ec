package main

import (
	"github.com/JWebSmart/Nft-marketplace/cmd"
	"github.com/JWebSmart/Nft-marketplace/config"
)

var (
	Version    = "dev"
	CommitHash = "unknown"
)

func main() {
	config.SetBuildInfo(Version, CommitHash)
	if err := cmd.NewRootCmd().Execute(); err != nil {
		panic(err)
	}
}
