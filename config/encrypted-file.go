package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"sync"

	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/helper"
)

var (
	defaultFileEncrKey = []byte("Qm7#rT2v!Lp9xWz4$Nc8^Hs1&Jd6*Fk3")
)

// getFileEncrKey returns the AES-256 key for config files.
// SP_CONFIG_KEY overrides the built-in key; its SHA-256 digest is used so any length works.
func getFileEncrKey() []byte {
	if k := helper.ReadValueFromEnvWithDefault(constants.EnvVarConfigKey, ""); k != "" {
		sum := sha256.Sum256([]byte(k))
		return sum[:]
	}
	return defaultFileEncrKey
}

// EncryptedFile stores bytes AES-GCM sealed and base64 encoded.
// The nonce is prepended to the sealed bytes.
type EncryptedFile struct {
	Dirname  string
	FullPath string
	mu       sync.Mutex
}

func NewEncryptedFile(dirName string, filename string) *EncryptedFile {
	return &EncryptedFile{Dirname: dirName, FullPath: path.Join(dirName, filename)}
}

// Set seals text and overwrites the file, creating the directory if required.
func (f *EncryptedFile) Set(text []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sealed, err := seal(text, getFileEncrKey())
	if err != nil {
		return err
	}
	if err = makeDir(f.Dirname); err != nil {
		return err
	}
	return ioutil.WriteFile(f.FullPath, []byte(base64.StdEncoding.EncodeToString(sealed)), 0600)
}

// Get returns the plaintext of the file or FileNotFoundError.
func (f *EncryptedFile) Get() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b64, err := ioutil.ReadFile(f.FullPath)
	if os.IsNotExist(err) {
		return nil, FileNotFoundError{f.FullPath}
	} else if err != nil {
		return nil, err
	}
	sealed, err := base64.StdEncoding.DecodeString(string(b64))
	if err != nil {
		return nil, err
	}
	return open(sealed, getFileEncrKey())
}

func newGCM(key []byte) (cipher.AEAD, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(c)
}

func seal(text []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, text, nil), nil
}

func open(sealed []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	n := gcm.NonceSize()
	if len(sealed) < n {
		return nil, fmt.Errorf("encrypted text is too short")
	}
	return gcm.Open(nil, sealed[:n], sealed[n:], nil)
}
