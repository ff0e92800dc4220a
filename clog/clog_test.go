package clog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	lines []string
}

func (r *recorder) Infof(format string, args ...interface{}) {
	r.lines = append(r.lines, "I "+fmt.Sprintf(format, args...))
}
func (r *recorder) Warningf(format string, args ...interface{}) {
	r.lines = append(r.lines, "W "+fmt.Sprintf(format, args...))
}
func (r *recorder) Errorf(format string, args ...interface{}) {
	r.lines = append(r.lines, "E "+fmt.Sprintf(format, args...))
}
func (r *recorder) Fatalf(format string, args ...interface{}) {
	r.lines = append(r.lines, "F "+fmt.Sprintf(format, args...))
}

func TestSetLogger(t *testing.T) {
	rec := &recorder{}
	SetLogger(rec)
	defer SetLogger(stdlog{})

	Infof("loaded %d", 3)
	Warningf("slow")
	Errorf("bad %q", "x")
	require.Equal(t, []string{"I loaded 3", "W slow", `E bad "x"`}, rec.lines)
}

func TestVerbosity(t *testing.T) {
	defer SetV(0)
	SetV(1)
	require.True(t, V(1))
	require.False(t, V(2))
}

func TestNilLogger(t *testing.T) {
	SetLogger(nil)
	defer SetLogger(stdlog{})
	Infof("dropped")
}
