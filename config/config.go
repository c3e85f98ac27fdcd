package config

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"gopkg.in/yaml.v2"
)

var sparkpipeHomeDir string

// Main and Connections are the default config files in the user's config directory.
var (
	Main        = NewMainFile()
	Connections = NewConnectionsFile()
)

const (
	MainFileNamePrefix              = "config"
	MainFileNameExt                 = "yaml"
	MainFileFullName                = MainFileNamePrefix + "." + MainFileNameExt
	ConnectionsConfigFileNamePrefix = "connections"
	ConnectionsConfigFileNameExt    = "yaml"
	ConnectionsConfigFileFullName   = ConnectionsConfigFileNamePrefix + "." + ConnectionsConfigFileNameExt
)

// FileNotFoundError denotes failing to find configuration file.
type FileNotFoundError struct {
	name string
}

// Error returns the formatted configuration error.
func (f FileNotFoundError) Error() string {
	return fmt.Sprintf("config file %q not found", f.name)
}

type KeyNotFoundError struct {
	configFile string
	key        string
	err        error
}

func (k KeyNotFoundError) Error() string {
	if k.err != nil {
		return fmt.Sprintf("key %q not found in config file %q: %v", k.key, k.configFile, k.err)
	}
	return fmt.Sprintf("key %q not found in config file %q", k.key, k.configFile)
}

// File is a YAML map persisted in an EncryptedFile.
type File struct {
	Dirname      string
	FileName     string
	FilePrefix   string
	FileExt      string
	FullPath     string
	data         map[string]interface{}
	dataIsLoaded bool
	f            *EncryptedFile
	mu           sync.Mutex
}

// NewMainFile returns the general config file in the user's config directory.
func NewMainFile() *File {
	return NewConfigFileWithDir(mustGetConfigHomeDir(), MainFileFullName)
}

// NewConnectionsFile returns the connections config file in the user's config directory.
func NewConnectionsFile() *File {
	return NewConfigFileWithDir(mustGetConfigHomeDir(), ConnectionsConfigFileFullName)
}

func NewConfigFileWithDir(dirName string, filename string) *File {
	c := &File{Dirname: dirName, FileName: filename}
	c.FullPath = path.Join(dirName, filename)
	c.FileExt = strings.TrimLeft(path.Ext(filename), ".")
	c.FilePrefix = strings.TrimSuffix(c.FileName, "."+c.FileExt)
	c.data = make(map[string]interface{})
	c.f = NewEncryptedFile(dirName, filename)
	return c
}

// Get will fetch the key from the config File into variable, out.
// Supported out types are: string, ConnectionDetails.
// Return an error if we can't find the key.
func (c *File) Get(key string, out interface{}) error {
	val := reflect.ValueOf(out)
	if val.Kind() != reflect.Ptr {
		return errors.New("out must be a pointer")
	}
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	c.mu.Lock()
	d, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		switch val.Elem().Interface().(type) {
		case string:
			return KeyNotFoundError{c.FullPath, key, fmt.Errorf("missing string value for key")}
		case shared.ConnectionDetails:
			return KeyNotFoundError{c.FullPath, key, fmt.Errorf("missing connection")}
		}
		return KeyNotFoundError{c.FullPath, key, nil}
	}
	return mapstructure.Decode(d, out)
}

func (c *File) Set(key string, val interface{}) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	// Store the YAML form of val so that reads match what is loaded from disk.
	b, err := yaml.Marshal(val)
	if err != nil {
		return fmt.Errorf("error marshalling value for key %v: %v", key, err)
	}
	var v interface{}
	if err = yaml.Unmarshal(b, &v); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
	return c.save(key)
}

func (c *File) Delete(key string) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, keyExists := c.data[key]; !keyExists {
		return KeyNotFoundError{c.FullPath, key, nil}
	}
	delete(c.data, key)
	return c.save(key)
}

// GetAllKeys returns the sorted keys of the file. A missing file has no keys.
func (c *File) GetAllKeys() ([]string, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	retval := make([]string, 0, len(c.data))
	for k := range c.data {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval, nil
}

// save writes the data. The caller holds the lock.
func (c *File) save(key string) error {
	b, err := yaml.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("error marshalling data while writing key %v to config file %v: %v", key, c.FullPath, err)
	}
	return c.f.Set(b)
}

// ensureLoaded loads the data once. A missing file is treated as empty.
func (c *File) ensureLoaded() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dataIsLoaded {
		return nil
	}
	b, err := c.f.Get()
	if err != nil {
		var notFound FileNotFoundError
		if errors.As(err, &notFound) {
			c.dataIsLoaded = true
			return nil
		}
		return err
	}
	if err = yaml.Unmarshal(b, c.data); err != nil {
		return err
	}
	c.dataIsLoaded = true
	return nil
}
