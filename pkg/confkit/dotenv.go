package confkit

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/joho/godotenv"
)

const (
	envNoDotenv = "NO_DOTENV"
	envOverload = "DOTENV_OVERLOAD"
	envFile     = "ENV_FILE"
)

var dotenvOnce sync.Once

// LoadDotenvOnce loads .env files once per process. NO_DOTENV=1 disables
// it, ENV_FILE pins a single file and DOTENV_OVERLOAD=1 lets the file win
// over variables already set.
func LoadDotenvOnce() {
	dotenvOnce.Do(func() {
		if os.Getenv(envNoDotenv) == "1" {
			return
		}
		start := "."
		if _, file, _, ok := runtime.Caller(0); ok {
			start = filepath.Dir(file)
		}
		LoadDotenv(dotenvCandidates(start), os.Getenv(envOverload) == "1")
	})
}

// LoadDotenv applies every existing file in paths. Missing files are skipped.
// Without overload the first file to define a key wins.
func LoadDotenv(paths []string, overload bool) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if overload {
			_ = godotenv.Overload(p)
		} else {
			_ = godotenv.Load(p)
		}
	}
}

func dotenvCandidates(start string) []string {
	if f := os.Getenv(envFile); f != "" {
		return []string{f}
	}
	var paths []string
	if _, found := walkUp(start, func(dir string) {
		paths = append(paths, filepath.Join(dir, ".env"))
	}); !found {
		return []string{".env"}
	}
	return paths
}
