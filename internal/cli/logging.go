package cli

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds the run logger: text records on stderr, teed into a
// rotating file when logFile is set. The returned closer flushes the file.
func newLogger(stderr io.Writer, logFile, level string) (*slog.Logger, io.Closer) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}

	w := stderr
	var closer io.Closer = nopCloser{}
	if logFile != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   logFile,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w = io.MultiWriter(stderr, fileWriter)
		closer = fileWriter
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
