package main

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetupLogger_DefaultLevel(t *testing.T) {
	t.Setenv("RETAIL_LOG_LEVEL", "")
	setupLogger()

	if log.GetLevel() != log.InfoLevel {
		t.Fatalf("default level = %s, want info", log.GetLevel())
	}
}

func TestSetupLogger_EnvOverride(t *testing.T) {
	t.Setenv("RETAIL_LOG_LEVEL", "debug")
	setupLogger()
	defer log.SetLevel(log.InfoLevel)

	if log.GetLevel() != log.DebugLevel {
		t.Fatalf("level = %s, want debug", log.GetLevel())
	}
}

func TestSetupLogger_BadLevelIgnored(t *testing.T) {
	t.Setenv("RETAIL_LOG_LEVEL", "chatty")
	setupLogger()

	if log.GetLevel() != log.InfoLevel {
		t.Fatalf("bad level must fall back to info, got %s", log.GetLevel())
	}
}
