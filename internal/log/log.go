package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/apex/log"
)

// InitLogger installs the line handler on stderr and sets the level.
// Unknown levels fall back to info.
func InitLogger(level string) {
	log.SetHandler(NewHandler(os.Stderr))
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// Handler formats entries as "timestamp L message key=value ...".
type Handler struct {
	mu sync.Mutex
	w  io.Writer
}

func NewHandler(w io.Writer) *Handler {
	return &Handler{w: w}
}

// HandleLog implements the log.Handler interface
func (h *Handler) HandleLog(e *log.Entry) error {
	var sb strings.Builder
	sb.WriteString(e.Timestamp.Format("2006-01-02 15:04:05"))
	sb.WriteByte(' ')
	sb.WriteString(strings.ToUpper(e.Level.String())[:1])
	sb.WriteByte(' ')
	sb.WriteString(e.Message)

	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(&sb, " %s=%v", k, e.Fields[k])
	}
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}
