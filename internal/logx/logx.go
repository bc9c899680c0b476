// Package logx contains the apex/log handler we use on the console.
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
)

// Colors mapping.
var Colors = [...]*color.Color{
	log.DebugLevel: color.New(color.FgWhite),
	log.InfoLevel:  color.New(color.FgBlue),
	log.WarnLevel:  color.New(color.FgYellow),
	log.ErrorLevel: color.New(color.FgRed),
	log.FatalLevel: color.New(color.FgRed),
}

// Handler implements log.Handler. Each line contains the seconds
// elapsed since StartTime, the level, the message and the fields.
type Handler struct {
	// NoColor disables colors.
	NoColor bool

	// StartTime is the time when we started logging.
	StartTime time.Time

	// Writer is the underlying writer.
	Writer io.Writer

	mu sync.Mutex
}

var _ log.Handler = &Handler{}

// NewHandler creates a new [*Handler]. We only emit colors when
// w is a file and the standard output is a terminal.
func NewHandler(w io.Writer) *Handler {
	h := &Handler{
		NoColor:   true,
		StartTime: time.Now(),
		Writer:    w,
	}
	if f, ok := w.(*os.File); ok {
		h.Writer = colorable.NewColorable(f)
		h.NoColor = color.NoColor
	}
	return h
}

// NewLogger returns a logger writing on stderr.
func NewLogger(verbose bool) *log.Logger {
	logger := &log.Logger{Handler: NewHandler(os.Stderr), Level: log.InfoLevel}
	if verbose {
		logger.Level = log.DebugLevel
	}
	return logger
}

// HandleLog implements log.Handler.
func (h *Handler) HandleLog(e *log.Entry) error {
	level := fmt.Sprintf("<%s>", e.Level)
	if !h.NoColor && int(e.Level) >= 0 && int(e.Level) < len(Colors) {
		level = Colors[e.Level].Sprint(level)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%10.6f] %s %s", e.Timestamp.Sub(h.StartTime).Seconds(), level, e.Message)
	for _, name := range e.Fields.Names() {
		fmt.Fprintf(&sb, " %s=%v", name, e.Fields.Get(name))
	}
	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.Writer, sb.String())
	return err
}
