package config

import (
	"errors"
	"os"

	"github.com/go-ini/ini"
)

// LoadIni maps the section named by the ENV variable (the default section
// when ENV is empty) of the INI file at path onto target. Secrets never go in
// the INI file; they are read from the environment only.
func LoadIni[T any](path string, target *T) error {
	if target == nil {
		return errors.New("target cannot be nil")
	}

	file, err := ini.Load(path)
	if err != nil {
		return err
	}

	runMode := os.Getenv("ENV")
	return file.Section(runMode).MapTo(target)
}
