package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Conn  string
	debug bool
}

func (c *Config) SetDebug(debug bool) { c.debug = debug }

// Connect establishes a single connection. Under debug every executed query
// is mirrored into the logger.
func Connect(
	ctx context.Context,
	logger *zap.Logger,
	cfg Config,
) (*pgx.Conn, error) {
	cnf, err := pgx.ParseConfig(cfg.Conn)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	if cfg.debug {
		cnf.Tracer = &tracelog.TraceLog{
			Logger:   traceLogger(logger.Named("db")),
			LogLevel: tracelog.LogLevelInfo,
		}
	}

	conn, err := pgx.ConnectConfig(ctx, cnf)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return conn, nil
}

func traceLogger(log *zap.Logger) tracelog.LoggerFunc {
	return func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		// prepared statement traffic is pure noise at query level
		if msg == "Prepare" {
			return
		}

		fields := make([]zapcore.Field, 0, len(data))
		for k, v := range data {
			fields = append(fields, zap.Any(k, v))
		}

		var lvl zapcore.Level
		switch level {
		case tracelog.LogLevelWarn:
			lvl = zapcore.WarnLevel
		case tracelog.LogLevelError:
			lvl = zapcore.ErrorLevel
		case tracelog.LogLevelInfo:
			lvl = zapcore.InfoLevel
		default:
			lvl = zapcore.DebugLevel
		}

		if ce := log.Check(lvl, msg); ce != nil {
			ce.Write(fields...)
		}
	}
}
