package main

import (
	"log/slog"

	"flickprice/cmd/spotprice/commands"
	"flickprice/lib/osutil"
	"flickprice/lib/telemetry"
)

func main() {
	ctx := osutil.SignalContext()

	telemetry.InitSlog(false)
	tel, err := telemetry.SetupFromEnv(ctx, "spotprice")
	if err != nil {
		slog.Warn("telemetry setup failed, continuing without it", "err", err)
	}
	defer tel.Shutdown(ctx)

	commands.ExecuteContext(ctx)
}
