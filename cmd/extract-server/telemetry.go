package main

import (
	"context"
	"log/slog"

	"socialpulse-backend/lib/restyutil"
	"socialpulse-backend/lib/scrapers/instagram"
	"socialpulse-backend/lib/scrapers/tiktok"
	"socialpulse-backend/lib/scrapers/x"
	"socialpulse-backend/lib/scrapers/youtube"
	"socialpulse-backend/lib/serviceutil"
	"socialpulse-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	tel, err := telemetry.SetupFromEnv(ctx, "extract-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		tel.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}

	x.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/x"),
	)
	youtube.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/youtube"),
	)
	tiktok.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/tiktok"),
	)
	instagram.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/instagram"),
	)
}
