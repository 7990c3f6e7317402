package main

import (
	"os"

	"RiskEngine/cmd/riskengine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
