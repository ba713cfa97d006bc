package utils

import (
	"io"
	"sync"
)

type flushableSink interface {
	Flush() error
}

// FlushingWriter forwards writes to the wrapped writer and flushes after every
// write so progress output appears immediately on buffered sinks.
type FlushingWriter struct {
	writeMutex sync.Mutex
	sink       io.Writer
}

// NewFlushingWriter wraps the writer with flush-on-write behavior. Wrapping an
// existing FlushingWriter returns it unchanged.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if existingWrapper, alreadyFlushing := writer.(*FlushingWriter); alreadyFlushing {
		return existingWrapper
	}
	return &FlushingWriter{sink: writer}
}

// Write forwards data to the wrapped writer, then flushes it when supported.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	if writer == nil || writer.sink == nil {
		return 0, nil
	}

	writer.writeMutex.Lock()
	defer writer.writeMutex.Unlock()

	writtenCount, writeError := writer.sink.Write(data)
	if writeError != nil {
		return writtenCount, writeError
	}

	if sink, canFlush := writer.sink.(flushableSink); canFlush {
		if flushError := sink.Flush(); flushError != nil {
			return writtenCount, flushError
		}
	}

	return writtenCount, nil
}
