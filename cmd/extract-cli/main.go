package main

import (
	"context"

	"socialpulse-backend/cmd/extract-cli/commands"
	"socialpulse-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "extract-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
