package logging

import (
	"encoding/json"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bospay/bosledger/logger"
)

// Helper writes logs to all provided io.Writers.
// Helper implements the logger.Logger interface.
// Writing happens concurrently without blocking the calling goroutine.
type Helper struct {
	callOnErr func(error)
	writers   []io.Writer
}

// New creates a new Helper.
func New(callOnErr func(error), writers ...io.Writer) Helper {
	return Helper{callOnErr: callOnErr, writers: writers}
}

// Debug writes a debug log.
func (h Helper) Debug(msg string) {
	h.write("debug", msg)
}

// Info writes an info log.
func (h Helper) Info(msg string) {
	h.write("info", msg)
}

// Warn writes a warning log.
func (h Helper) Warn(msg string) {
	h.write("warn", msg)
}

// Error writes an error log.
func (h Helper) Error(msg string) {
	h.write("error", msg)
}

// Fatal writes a fatal log.
func (h Helper) Fatal(msg string) {
	h.write("fatal", msg)
}

func (h Helper) write(level, msg string) {
	l := logger.Log{
		ID:        primitive.NewObjectID(),
		Level:     level,
		Msg:       msg,
		CreatedAt: time.Now(),
	}
	go func() {
		raw, err := json.Marshal(&l)
		if err != nil {
			h.callOnErr(err)
			return
		}
		for _, w := range h.writers {
			if _, err := w.Write(raw); err != nil {
				h.callOnErr(err)
			}
		}
	}()
}
