package config

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
)

// DefaultEnvFiles are read in order; values already in the environment win.
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads each file that exists and returns the ones it read.
func LoadEnvFiles(files ...string) []string {
	var loaded []string
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Printf("config: read %s: %v", file, err)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	return loaded
}
