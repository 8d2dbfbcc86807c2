package trace

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	traceSync    = sync.Mutex{}
	traceCounter int64
)

// TraceConfig controls where transcripts are written and how many are kept.
type TraceConfig struct {
	Directory         string
	RetentionDuration time.Duration
	MaxTraceFiles     int
}

type Tracer struct {
	config TraceConfig
}

const (
	defaultRetentionDuration = 7 * 24 * time.Hour
	defaultMaxTraceFiles     = 10

	filePrefix = "trace-"
	fileSuffix = ".txt"
)

// NewTracer prepares the trace directory, prunes old transcripts and returns the
// run that records the current session.
func NewTracer(config ...TraceConfig) *TraceRun {
	cfg := TraceConfig{
		Directory:         filepath.Join(os.TempDir(), "fileagent-traces"),
		RetentionDuration: defaultRetentionDuration,
		MaxTraceFiles:     defaultMaxTraceFiles,
	}

	if len(config) > 0 {
		if config[0].Directory != "" {
			cfg.Directory = config[0].Directory
		}
		if config[0].RetentionDuration > 0 {
			cfg.RetentionDuration = config[0].RetentionDuration
		}
		if config[0].MaxTraceFiles > 0 {
			cfg.MaxTraceFiles = config[0].MaxTraceFiles
		}
	}

	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		slog.Error("failed to create trace directory", "dir", cfg.Directory, "error", err)
	}

	t := &Tracer{config: cfg}
	return t.NewTraceRun()
}

// NewTraceRun starts a new transcript file. Old files are pruned first so the
// new one always survives.
func (tr *Tracer) NewTraceRun() *TraceRun {
	tr.cleanup()

	timestamp := time.Now().Format("20060102150405")
	counter := atomic.AddInt64(&traceCounter, 1)
	path := filepath.Join(tr.config.Directory, fmt.Sprintf("%s%s.%03d%s", filePrefix, timestamp, counter, fileSuffix))

	run := &TraceRun{
		tracer:    tr,
		startTime: time.Now(),
		filepath:  path,
	}
	run.writeToFile(func(w io.Writer) {
		fmt.Fprintf(w, "Start Time: %s\n", run.startTime.Format(time.RFC3339))
	})
	return run
}

type traceFile struct {
	path    string
	modTime time.Time
}

func (tr *Tracer) cleanup() {
	entries, err := os.ReadDir(tr.config.Directory)
	if err != nil {
		slog.Error("failed to read trace directory", "error", err)
		return
	}

	var files []traceFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), filePrefix) || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, traceFile{path: filepath.Join(tr.config.Directory, entry.Name()), modTime: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	kept := files[:0]
	if tr.config.RetentionDuration > 0 {
		cutoff := time.Now().Add(-tr.config.RetentionDuration)
		for _, f := range files {
			if f.modTime.Before(cutoff) {
				remove(f.path, "expired")
				continue
			}
			kept = append(kept, f)
		}
	} else {
		kept = files
	}

	// leave room for the file about to be created
	if tr.config.MaxTraceFiles > 0 && len(kept) >= tr.config.MaxTraceFiles {
		excess := len(kept) - tr.config.MaxTraceFiles + 1
		for _, f := range kept[:excess] {
			remove(f.path, "excess")
		}
	}
}

func remove(path, reason string) {
	if err := os.Remove(path); err != nil {
		slog.Error("failed to remove trace file", "file", path, "reason", reason, "error", err)
		return
	}
	slog.Debug("removed trace file", "file", filepath.Base(path), "reason", reason)
}
