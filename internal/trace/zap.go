package trace

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZapSink writes the trace as structured records through zap.
type ZapSink struct {
	log  *zap.SugaredLogger
	file io.Closer
}

// NewZapSink wraps an existing zap logger.
func NewZapSink(l *zap.Logger) *ZapSink {
	return &ZapSink{log: l.Sugar()}
}

// FileOptions controls rotation of a trace file.
type FileOptions struct {
	MaxSizeMB  int // rotate after this many megabytes (default 10)
	MaxBackups int // rotated files to keep (default 3)
	MaxAgeDays int // days to keep rotated files (default 7)
	Compress   bool
}

// NewFileSink opens a rotating trace file at path.  Call Close when the
// session is done so buffered records reach the disk.
func NewFileSink(path string, opts FileOptions) *ZapSink {
	if opts.MaxSizeMB == 0 {
		opts.MaxSizeMB = 10
	}
	if opts.MaxBackups == 0 {
		opts.MaxBackups = 3
	}
	if opts.MaxAgeDays == 0 {
		opts.MaxAgeDays = 7
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(lj), zapcore.DebugLevel)
	return &ZapSink{log: zap.New(core).Named("exchange").Sugar(), file: lj}
}

// Emit implements Sink.
func (s *ZapSink) Emit(d Direction, line string) {
	s.log.Infow(Format(d, line), "dir", d.String(), "bytes", len(line))
}

// Close flushes buffered records and releases the trace file.
func (s *ZapSink) Close() error {
	err := s.log.Sync()
	if s.file != nil {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
