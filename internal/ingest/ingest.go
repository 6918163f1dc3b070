// Package ingest reads exported motor-task session files.
//
// A session file starts with a participant line and a summary CSV, followed
// by raw trajectory blocks:
//
//	Participant ID,P01
//	Trial,Movement Time (ms),Reaction Time (ms),...
//	1,812,240,...
//
//	Raw Path Data:
//	Trial 1
//	Time (ms),X (px),Y (px)
//	0.00,10.5,20.0
//	...
//
// The "Raw Path Data:" marker is optional; the first "Trial N" block line
// also starts the raw section. Columns after X and Y are ignored.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/motion.report/internal/fsutil"
	"github.com/banshee-data/motion.report/internal/kinematics"
	"github.com/banshee-data/motion.report/internal/monitoring"
	"github.com/banshee-data/motion.report/internal/units"
)

const rawSectionMarker = "Raw Path Data:"

// ErrNoTrials is returned when a file contains no trial blocks at all.
var ErrNoTrials = errors.New("no trial blocks found")

// RejectedTrial is a trial block that could not form a valid trajectory.
type RejectedTrial struct {
	TrialNumber int    `json:"trial_number"`
	Reason      string `json:"reason"`
}

// Block is one trial block in file order. Err is set, and Trajectory left
// zero, when the block could not form a valid trajectory.
type Block struct {
	TrialNumber int
	Trajectory  kinematics.Trajectory
	Err         error
}

// Session is the parsed content of one session file. Blocks holds every
// trial block in file order; Trials and Rejected split the same blocks by
// outcome.
type Session struct {
	ParticipantID string
	// Unit is the coordinate unit declared by the block headers, px unless a
	// header names another valid unit.
	Unit        string
	SummaryRows int
	Trials      []kinematics.Trajectory
	Rejected    []RejectedTrial
	Blocks      []Block
	Warnings    []string
}

// TrialCount is the number of trial blocks found, accepted or not.
func (s *Session) TrialCount() int {
	return len(s.Trials) + len(s.Rejected)
}

type block struct {
	trial   int
	samples []kinematics.Sample
}

// Parse reads a session from r.
func Parse(r io.Reader) (*Session, error) {
	sess := &Session{Unit: units.PX}

	var (
		blocks     []*block
		cur        *block
		inRaw      bool
		lineNo     int
		headerSeen bool
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !inRaw {
			switch {
			case line == rawSectionMarker:
				inRaw = true
				continue
			case isTrialHeader(line):
				inRaw = true
			case strings.HasPrefix(line, "Participant ID"):
				if parts := strings.SplitN(line, ",", 2); len(parts) == 2 {
					sess.ParticipantID = strings.TrimSpace(parts[1])
				}
				continue
			case !headerSeen:
				// Summary column header.
				headerSeen = true
				continue
			default:
				sess.SummaryRows++
				continue
			}
		}

		if isTrialHeader(line) {
			n, err := parseTrialNumber(line)
			if err != nil {
				sess.Warnings = append(sess.Warnings, fmt.Sprintf("line %d: %v", lineNo, err))
				cur = nil
				continue
			}
			cur = &block{trial: n}
			blocks = append(blocks, cur)
			continue
		}

		if isColumnHeader(line) {
			if u := unitFromHeader(line); u != "" {
				sess.Unit = u
			}
			continue
		}

		if cur == nil {
			sess.Warnings = append(sess.Warnings, fmt.Sprintf("line %d: sample outside a trial block: %q", lineNo, line))
			continue
		}

		s, err := parseSample(line)
		if err != nil {
			sess.Warnings = append(sess.Warnings, fmt.Sprintf("line %d: trial %d: %v", lineNo, cur.trial, err))
			continue
		}
		cur.samples = append(cur.samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if len(blocks) == 0 {
		return nil, ErrNoTrials
	}

	for _, b := range blocks {
		traj, err := kinematics.NewTrajectory(b.trial, b.samples)
		if err != nil {
			sess.Rejected = append(sess.Rejected, RejectedTrial{TrialNumber: b.trial, Reason: err.Error()})
			sess.Blocks = append(sess.Blocks, Block{TrialNumber: b.trial, Err: err})
			continue
		}
		sess.Trials = append(sess.Trials, traj)
		sess.Blocks = append(sess.Blocks, Block{TrialNumber: b.trial, Trajectory: traj})
	}

	monitoring.Logf("[ingest] participant %q: %d trials, %d rejected, %d warnings",
		sess.ParticipantID, len(sess.Trials), len(sess.Rejected), len(sess.Warnings))
	return sess, nil
}

// ParseFile reads and parses the session file at path.
func ParseFile(fsys fsutil.FileSystem, path string) (*Session, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}
	defer f.Close()

	sess, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sess, nil
}

// isTrialHeader matches block headers such as "Trial 3" or
// "Trial 3 Path Data", but not the summary CSV header "Trial,...".
func isTrialHeader(line string) bool {
	fields := strings.Fields(line)
	return len(fields) >= 2 && fields[0] == "Trial" && !strings.Contains(line, ",")
}

func parseTrialNumber(line string) (int, error) {
	fields := strings.Fields(line)
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("bad trial header %q", line)
	}
	return n, nil
}

func isColumnHeader(line string) bool {
	return strings.HasPrefix(line, "Time") || strings.HasPrefix(line, "X") || strings.HasPrefix(line, "Y")
}

// unitFromHeader returns the unit named in an "X (<unit>)" column, or "".
func unitFromHeader(line string) string {
	cols := strings.Split(line, ",")
	if len(cols) < 2 {
		return ""
	}
	col := strings.TrimSpace(cols[1])
	open, end := strings.Index(col, "("), strings.LastIndex(col, ")")
	if open < 0 || end <= open {
		return ""
	}
	u := strings.TrimSpace(col[open+1 : end])
	if !units.IsValid(u) {
		return ""
	}
	return u
}

func parseSample(line string) (kinematics.Sample, error) {
	cols := strings.Split(line, ",")
	if len(cols) < 3 {
		return kinematics.Sample{}, fmt.Errorf("expected at least 3 columns, got %d: %q", len(cols), line)
	}
	var vals [3]float64
	for i := range vals {
		v, err := strconv.ParseFloat(strings.TrimSpace(cols[i]), 64)
		if err != nil {
			return kinematics.Sample{}, fmt.Errorf("malformed sample %q", line)
		}
		vals[i] = v
	}
	return kinematics.Sample{TimestampMs: vals[0], X: vals[1], Y: vals[2]}, nil
}
