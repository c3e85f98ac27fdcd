package config

import (
	"fmt"
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
	"github.com/relloyd/sparkpipe/constants"
)

// mustGetConfigHomeDir returns the full path to the directory that stores all config files.
func mustGetConfigHomeDir() string {
	if sparkpipeHomeDir == "" {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		sparkpipeHomeDir = path.Join(home, constants.ConfigDirName)
	}
	return sparkpipeHomeDir
}

// makeDir will make the given directory if it does not already exist.
func makeDir(dir string) error {
	_, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err = os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("error creating directory %v: %v", dir, err)
		}
	} else if err != nil {
		return err
	}
	return nil
}
