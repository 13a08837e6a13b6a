package dotenv

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// LoadEnv loads KEY=VALUE pairs from the given files into the process
// environment. Variables already present in the environment are kept.
// Called without arguments it reads ./.env and treats a missing file as
// nothing to load; explicitly named files must exist.
func LoadEnv(envPath ...string) error {
	if len(envPath) == 0 {
		err := godotenv.Load(defaultEnvFile)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	return godotenv.Load(envPath...)
}
