package ui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

const logBufferSize = 1000

type teaProgramProvider interface {
	Send(msg tea.Msg)
}

// LogMsg is a single log line sent to the [tea.Program].
type LogMsg string

// TeaLogWriter is an [io.Writer] for use inside a [slog.Handler], forwarding
// every written log line to a [tea.Program] as a [LogMsg].
//
// Lines are buffered, so a slow user interface never holds up the patch run.
// When the buffer is full, lines are dropped and counted instead.
type TeaLogWriter struct {
	program  teaProgramProvider
	doneChan chan struct{}
	logChan  chan LogMsg
	dropped  atomic.Uint64
}

// NewTeaLogWriter returns a pointer to a new [TeaLogWriter] and starts
// forwarding. It should eventually be stopped with [TeaLogWriter.Stop].
func NewTeaLogWriter(program teaProgramProvider) *TeaLogWriter {
	wr := &TeaLogWriter{
		program:  program,
		doneChan: make(chan struct{}),
		logChan:  make(chan LogMsg, logBufferSize),
	}

	go wr.forward()

	return wr
}

// Stop stops forwarding. Lines written afterwards, or still buffered, are
// discarded.
func (wr *TeaLogWriter) Stop() {
	close(wr.doneChan)
}

// Dropped returns the number of lines lost to a full buffer.
func (wr *TeaLogWriter) Dropped() uint64 {
	return wr.dropped.Load()
}

func (wr *TeaLogWriter) forward() {
	for {
		select {
		case <-wr.doneChan:
			return
		case msg := <-wr.logChan:
			wr.program.Send(msg)
		}
	}
}

// Write queues a copy of p for forwarding. It never blocks and never fails.
func (wr *TeaLogWriter) Write(p []byte) (int, error) {
	select {
	case <-wr.doneChan:
		return len(p), nil
	default:
	}

	select {
	case wr.logChan <- LogMsg(p):
	default:
		wr.dropped.Add(1)
	}

	return len(p), nil
}
