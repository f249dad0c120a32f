// Package main is the entry point for the gitcalc CLI.
package main

import (
	"os"

	"github.com/Doubling-Open-Source/git-calculator/cmd"
	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	iocache.CloseCaching()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		contract.LogFatal("gitcalc", err)
	}
	os.Exit(0)
}
