package actions

import (
	"errors"
	"fmt"
	"io"

	"github.com/relloyd/sparkpipe/config"
	"github.com/relloyd/sparkpipe/helper"
)

type DefaultAddConfig struct {
	ConfigFile *config.File `errorTxt:"config-file" mandatory:"yes"`
	Key        string       `errorTxt:"key" mandatory:"yes"`
	Value      string       `errorTxt:"value" mandatory:"yes"`
	Force      bool
	Out        io.Writer
}

type DefaultRemoveConfig struct {
	ConfigFile *config.File `errorTxt:"config-file" mandatory:"yes"`
	Key        string       `errorTxt:"key" mandatory:"yes"`
	Out        io.Writer
}

type DefaultListConfig struct {
	ConfigFile *config.File `errorTxt:"config-file" mandatory:"yes"`
	Out        io.Writer
}

// RunDefaultAdd adds key+value to the given config file.
// If cfg.Force is not set then it return an error when the key exists.
// The config file is created when the first value is set.
func RunDefaultAdd(cfg *DefaultAddConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	var val string
	err := cfg.ConfigFile.Get(cfg.Key, &val)
	if err == nil && !cfg.Force { // if key exists and we're not allowed to overwrite...
		return fmt.Errorf("key %q exists, use force to update the value or remove it first", cfg.Key)
	} else if err != nil { // else there is an error...
		var keyNotFound config.KeyNotFoundError
		if !errors.As(err, &keyNotFound) { // if there was an unexpected error...
			return err
		}
	}
	if err = cfg.ConfigFile.Set(cfg.Key, cfg.Value); err != nil {
		return fmt.Errorf("error writing config file after adding: %v", err)
	}
	fmt.Fprintf(out(cfg.Out), "Key %q added to %q\n", cfg.Key, cfg.ConfigFile.FullPath)
	return nil
}

// RunDefaultRemove removes a key from the given config file.
func RunDefaultRemove(cfg *DefaultRemoveConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	err := cfg.ConfigFile.Delete(cfg.Key)
	if err != nil {
		return fmt.Errorf("unable to delete key %q from config: %v", cfg.Key, err)
	}
	fmt.Fprintf(out(cfg.Out), "Key %q removed\n", cfg.Key)
	return nil
}

// RunDefaultList prints every key and value in the given config file.
func RunDefaultList(cfg *DefaultListConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	keys, err := cfg.ConfigFile.GetAllKeys()
	if err != nil {
		return err
	}
	w := out(cfg.Out)
	for _, k := range keys {
		var v string
		if err := cfg.ConfigFile.Get(k, &v); err != nil {
			return err
		}
		fmt.Fprintf(w, "%v = %v\n", k, v)
	}
	return nil
}
