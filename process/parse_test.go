package process

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const psAuxFixture = `USER         PID %CPU %MEM    VSZ   RSS TTY      STAT START   TIME COMMAND
root           1  0.0  0.1 167744 11620 ?        Ss   Oct18   0:05 /sbin/init splash
alice        100  5.0  0.0  10000  2048 pts/0    S+   10:00   0:00 vim notes.txt
alice        101 12.5  1.2 900000 4096 ?        Sl   10:01   1:20 /usr/bin/firefox --new-window
bob          202  0.3  0.2  50000 30720 ?        S    09:00   0:02 sshd: bob@pts/1
`

func TestParsePS_Fixture(t *testing.T) {
	snap, err := ParsePS(psAuxFixture)
	require.NoError(t, err)
	require.Len(t, snap.Rows, 4)
	assert.Empty(t, snap.Skipped)

	assert.Equal(t, Row{Owner: "root", PID: 1, CPU: 0.0, MemoryKB: 11620, Command: "/sbin/init splash"}, snap.Rows[0])
	assert.Equal(t, "alice", snap.Rows[1].Owner)
	assert.Equal(t, 100, snap.Rows[1].PID)
	assert.InDelta(t, 5.0, snap.Rows[1].CPU, 1e-9)
	assert.Equal(t, int64(2048), snap.Rows[1].MemoryKB)
	assert.Equal(t, "/usr/bin/firefox --new-window", snap.Rows[2].Command)
}

func TestParsePS_HeaderAlwaysDropped(t *testing.T) {
	// Even a header that looks like a valid row is discarded
	out := "alice 1 1.0 0 0 1024 ? S 0 0 sh\nalice 2 2.0 0 0 2048 ? S 0 0 sh\n"
	snap, err := ParsePS(out)
	require.NoError(t, err)
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, 2, snap.Rows[0].PID)
}

func TestParsePS_HeaderOnly(t *testing.T) {
	snap, err := ParsePS("USER PID %CPU %MEM VSZ RSS TTY STAT START TIME COMMAND\n")
	require.NoError(t, err)
	assert.Empty(t, snap.Rows)
}

func TestParsePS_EmptyOutput(t *testing.T) {
	_, err := ParsePS("")
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestParsePS_MalformedRowsSkipped(t *testing.T) {
	out := `USER PID %CPU %MEM VSZ RSS TTY STAT START TIME COMMAND
alice 100 5.0 0.0 10000 2048 pts/0 S+ 10:00 0:00 vim
alice 1x1 5.0 0.0 10000 2048 pts/0 S+ 10:00 0:00 vim
alice 102 hot 0.0 10000 2048 pts/0 S+ 10:00 0:00 vim
alice 103 1.0

alice 104 1.0 0.0 10000 lots pts/0 S+ 10:00 0:00 vim
alice 105 0.5 0.0 10000 4096 pts/0 S+ 10:00 0:00 vim
`
	snap, err := ParsePS(out)
	require.NoError(t, err)

	require.Len(t, snap.Rows, 2)
	assert.Equal(t, 100, snap.Rows[0].PID)
	assert.Equal(t, 105, snap.Rows[1].PID)

	require.Len(t, snap.Skipped, 4)
	lines := make([]int, 0, len(snap.Skipped))
	for _, rowErr := range snap.Skipped {
		lines = append(lines, rowErr.Line)
	}
	assert.Equal(t, []int{3, 4, 5, 7}, lines)

	var numErr *strconv.NumError
	assert.True(t, errors.As(snap.Skipped[0], &numErr), "pid parse error is unwrappable")
	assert.Contains(t, snap.Skipped[2].Error(), "expected at least 6 fields")
}

func TestParsePS_MinimalSixColumns(t *testing.T) {
	snap, err := ParsePS("h\nalice 7 0.0 0.0 100 2048\n")
	require.NoError(t, err)
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, "", snap.Rows[0].Command)
	assert.Equal(t, int64(2048), snap.Rows[0].MemoryKB)
}
