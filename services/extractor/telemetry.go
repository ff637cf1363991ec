package extractor

import (
	"socialpulse-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("socialpulse.services.extractor")
