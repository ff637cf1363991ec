package linkedin

import "socialpulse-backend/lib/telemetry"

var tracer = telemetry.Tracer("socialpulse.lib.scrapers.linkedin")
