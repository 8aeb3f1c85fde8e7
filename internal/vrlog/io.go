package vrlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// File names inside a session directory.
const (
	SessionMetaFile = "session_meta.json"
	TelemetryFile   = "telemetry.jsonl"
	EventsFile      = "events.jsonl"
	CandidatesFile  = "candidates.jsonl"
)

// Session is a fully loaded session directory. Candidates is nil when
// candidates.jsonl is absent.
type Session struct {
	Meta       SessionMeta
	Telemetry  []TelemetrySample
	Events     []EventRecord
	Candidates map[CandidateKey]CandidateSetRecord
}

// CandidateKey identifies a candidate set record.
type CandidateKey struct {
	PlayerID string
	FrameIdx int
}

// ReadSession loads a session directory. Telemetry is sorted by
// (frame_idx, t_ms) and events by t_ms so downstream derivation sees a
// stable order regardless of how the client flushed its buffers.
func ReadSession(dir string) (*Session, error) {
	s := &Session{}

	metaBytes, err := os.ReadFile(filepath.Join(dir, SessionMetaFile))
	if err != nil {
		return nil, fmt.Errorf("reading session meta: %w", err)
	}
	if err := json.Unmarshal(metaBytes, &s.Meta); err != nil {
		return nil, fmt.Errorf("parsing session meta: %w", err)
	}

	if err := readJSONL(filepath.Join(dir, TelemetryFile), func(raw []byte) error {
		var t TelemetrySample
		if err := json.Unmarshal(raw, &t); err != nil {
			return err
		}
		s.Telemetry = append(s.Telemetry, t)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("reading telemetry: %w", err)
	}
	sort.SliceStable(s.Telemetry, func(i, j int) bool {
		if s.Telemetry[i].FrameIdx != s.Telemetry[j].FrameIdx {
			return s.Telemetry[i].FrameIdx < s.Telemetry[j].FrameIdx
		}
		return s.Telemetry[i].TMs < s.Telemetry[j].TMs
	})

	if err := readJSONL(filepath.Join(dir, EventsFile), func(raw []byte) error {
		var e EventRecord
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		s.Events = append(s.Events, e)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}
	sort.SliceStable(s.Events, func(i, j int) bool { return s.Events[i].TMs < s.Events[j].TMs })

	candPath := filepath.Join(dir, CandidatesFile)
	if _, err := os.Stat(candPath); err == nil {
		s.Candidates = make(map[CandidateKey]CandidateSetRecord)
		if err := readJSONL(candPath, func(raw []byte) error {
			var r CandidateSetRecord
			if err := json.Unmarshal(raw, &r); err != nil {
				return err
			}
			s.Candidates[CandidateKey{PlayerID: r.PlayerID, FrameIdx: r.FrameIdx}] = r
			return nil
		}); err != nil {
			return nil, fmt.Errorf("reading candidates: %w", err)
		}
	}

	return s, nil
}

// WriteSession writes a session directory, creating it if needed.
// candidates may be nil.
func WriteSession(dir string, meta SessionMeta, telemetry []TelemetrySample, events []EventRecord, candidates []CandidateSetRecord) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SessionMetaFile), append(metaBytes, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing session meta: %w", err)
	}

	if err := writeJSONL(filepath.Join(dir, TelemetryFile), len(telemetry), func(i int) any { return telemetry[i] }); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	if err := writeJSONL(filepath.Join(dir, EventsFile), len(events), func(i int) any { return events[i] }); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	if candidates != nil {
		if err := writeJSONL(filepath.Join(dir, CandidatesFile), len(candidates), func(i int) any { return candidates[i] }); err != nil {
			return fmt.Errorf("writing candidates: %w", err)
		}
	}
	return nil
}

// WriteJSONLFile writes arbitrary rows as one JSON document per line.
func WriteJSONLFile[T any](path string, rows []T) error {
	return writeJSONL(path, len(rows), func(i int) any { return rows[i] })
}

func readJSONL(path string, fn func(raw []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		if err := fn(raw); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return sc.Err()
}

func writeJSONL(path string, n int, row func(i int) any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := 0; i < n; i++ {
		if err := enc.Encode(row(i)); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
