package process

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Column layout of `ps aux`
const (
	colOwner   = 0
	colPID     = 1
	colCPU     = 2
	colRSS     = 5
	colCommand = 10
	minColumns = 6
)

// ParsePS parses `ps aux` output
// The first line is a header and is dropped unconditionally; blank lines are ignored
// Malformed lines are reported in Snapshot.Skipped and never abort the parse
func ParsePS(out string) (Snapshot, error) {
	var snap Snapshot

	scanner := bufio.NewScanner(strings.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		row, err := parseLine(line)
		if err != nil {
			snap.Skipped = append(snap.Skipped, &RowError{Line: lineNo, Text: line, Err: err})
			continue
		}
		snap.Rows = append(snap.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return snap, fmt.Errorf("read listing: %w", err)
	}
	if lineNo == 0 {
		return snap, ErrNoOutput
	}

	return snap, nil
}

func parseLine(line string) (Row, error) {
	fields := strings.Fields(line)
	if len(fields) < minColumns {
		return Row{}, fmt.Errorf("expected at least %d fields, got %d", minColumns, len(fields))
	}

	pid, err := strconv.Atoi(fields[colPID])
	if err != nil {
		return Row{}, fmt.Errorf("pid: %w", err)
	}
	if pid < 0 {
		return Row{}, fmt.Errorf("pid: negative value %d", pid)
	}

	cpu, err := strconv.ParseFloat(strings.TrimSpace(fields[colCPU]), 64)
	if err != nil {
		return Row{}, fmt.Errorf("cpu: %w", err)
	}

	rss, err := strconv.ParseInt(fields[colRSS], 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("rss: %w", err)
	}

	row := Row{
		Owner:    fields[colOwner],
		PID:      pid,
		CPU:      cpu,
		MemoryKB: rss,
	}
	if len(fields) > colCommand {
		row.Command = strings.Join(fields[colCommand:], " ")
	}
	return row, nil
}
