package stockbit

import "socialpulse-backend/lib/telemetry"

var tracer = telemetry.Tracer("socialpulse.lib.scrapers.stockbit")
