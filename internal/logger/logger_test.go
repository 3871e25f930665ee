package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerParsesLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
	}
	for level, want := range cases {
		if got := NewLogger(level).GetLevel(); got != want {
			t.Errorf("NewLogger(%q) level = %v, want %v", level, got, want)
		}
	}
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	if got := NewLogger("verbose").GetLevel(); got != logrus.InfoLevel {
		t.Errorf("invalid level should default to info, got %v", got)
	}
}

func TestWithComponent(t *testing.T) {
	entry := WithComponent(NewLogger("info"), "screener")
	if entry.Data["component"] != "screener" {
		t.Errorf("component field = %v", entry.Data["component"])
	}
}
