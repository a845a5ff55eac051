package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardLogger_Verbosity(t *testing.T) {
	var buf bytes.Buffer
	l := NewStandardLogger(&buf)
	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.Warnf("warned")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO:  shown 2")
	assert.Contains(t, out, "WARN:  warned")

	buf.Reset()
	v := NewVerboseLogger(&buf)
	v.Debugf("now visible")
	assert.Contains(t, buf.String(), "DEBUG: now visible")
}

func TestStandardLogger_WithPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false).WithPrefix("[decode] ")
	l.Infof("rows=%d", 3)
	if !strings.Contains(buf.String(), "[decode] INFO:  rows=3") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestBufferLogger(t *testing.T) {
	b := NewBufferLogger()
	b.Infof("a")
	b.WithPrefix("p: ").Errorf("b")
	assert.Equal(t, "INFO:  a\np: ERROR: b\n", b.String())
}

type recorder struct{ lines []string }

func (r *recorder) Logf(format string, v ...interface{}) {
	r.lines = append(r.lines, format)
}

func TestLogfLogger(t *testing.T) {
	r := &recorder{}
	l := NewLogfLogger(r)
	l.Warnf("w")
	l.WithPrefix("x ").Debugf("d")
	assert.Equal(t, []string{"WARN:  w", "x DEBUG: d"}, r.lines)
}

func TestNopLogger(t *testing.T) {
	assert.Equal(t, NopLogger, NopLogger.WithPrefix("anything"))
	NopLogger.Panicf("does not panic")
}
