package instagram

import (
	"socialpulse-backend/lib/restyutil"
	"socialpulse-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("socialpulse.lib.scrapers.instagram")

var restyDebugOutput *restyutil.FilesystemOutput

// SetRestyInstrumentOutput makes scrapers created afterwards dump every
// http exchange to the given output. Debugging only.
func SetRestyInstrumentOutput(out restyutil.FilesystemOutput) {
	restyDebugOutput = &out
}
