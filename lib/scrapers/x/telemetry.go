package x

import (
	"socialpulse-backend/lib/restyutil"
	"socialpulse-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("socialpulse.lib.scrapers.x")

var restyDebugOutput *restyutil.FilesystemOutput

// SetRestyInstrumentOutput makes scrapers created afterwards dump every
// http exchange to the given output. Debugging only.
func SetRestyInstrumentOutput(out restyutil.FilesystemOutput) {
	restyDebugOutput = &out
}
