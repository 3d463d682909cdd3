// Package obs carries marco's ambient observability stack: structured
// logging with logrus (mirroring the teacher's cmd/olm -debug/logrus
// wiring) and a small Prometheus-backed counter/histogram registry for
// the --stats CLI flag. Neither concern is spec.md's focus — both are
// the ambient stack SPEC_FULL.md §2.1/§2.5 ask to carry regardless.
package obs

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the package-level logger every component logs through, the
// same "one *logrus.Logger, fields-based" shape the teacher's cmd/olm
// uses for -debug.
var Log = logrus.New()

func init() {
	Log.SetOutput(os.Stderr)
	Log.SetFormatter(&logrus.TextFormatter{})
}

// SetVerbosity maps the repeatable -v/--verbose count (spec §6.4) onto
// logrus levels: 0 -> Info, 1 -> Debug, 2+ -> Trace, the same
// Info->Debug step the teacher's -debug flag performs, extended one
// notch further for marco's richer -v/-v/-v.
func SetVerbosity(count int) {
	switch {
	case count <= 0:
		Log.SetLevel(logrus.InfoLevel)
	case count == 1:
		Log.SetLevel(logrus.DebugLevel)
	default:
		Log.SetLevel(logrus.TraceLevel)
	}
}

// WorkerFields builds the fields logged against every per-worker event:
// worker id, kind (MUS/MCS/MCSonly), seed size, and so on get added by
// the caller via .WithFields(WorkerFields(id)).WithField(...).
func WorkerFields(id int) logrus.Fields {
	return logrus.Fields{"worker": id}
}
