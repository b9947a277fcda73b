package book

import "github.com/rs/zerolog/log"

// logSinkError logs a reporting-sink I/O failure and continues; per the
// error-handling design, analysis output is best-effort.
func logSinkError(record string, err error) {
	log.Error().Err(err).Str("record", record).Msg("reporting sink write failed")
}
