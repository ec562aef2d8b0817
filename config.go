package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	envDataDir   = "AUTOCHAT_DATA_DIR"
	envCharacter = "AUTOCHAT_CHARACTER"
	envDebug     = "AUTOCHAT_DEBUG"
)

// loadEnv reads a .env file from the working directory when one exists.
// Variables already set in the environment win.
func loadEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("load .env: %v", err)
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logrus.Warnf("%s=%q is not a boolean, using %t", key, v, def)
		return def
	}
	return b
}
